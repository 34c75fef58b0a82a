// Package fieldconfig defines the audit form's field catalog: which fields
// exist, how they render, which values they accept, and which are required.
// The catalog is seeded with defaults and editable at runtime through the
// admin API.
package fieldconfig

// FieldType identifies how a field is rendered and validated.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeDropdown FieldType = "dropdown"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeCheckbox FieldType = "checkbox"
)

// FieldTypes returns every supported field type.
func FieldTypes() []FieldType {
	return []FieldType{TypeText, TypeTextarea, TypeDropdown, TypeNumber, TypeDate, TypeCheckbox}
}

// ValidType reports whether t is a supported field type.
func ValidType(t FieldType) bool {
	for _, ft := range FieldTypes() {
		if t == ft {
			return true
		}
	}
	return false
}

// Field describes one form field. Min/Max/Step apply to number fields only
// and are pointers so that "unset" is distinguishable from zero. Scoring is
// informational for admins: the engine owns the authoritative tables.
type Field struct {
	Name     string         `json:"name"`
	Type     FieldType      `json:"type"`
	Options  []string       `json:"options,omitempty"`
	Required bool           `json:"required"`
	MinValue *float64       `json:"min_value,omitempty"`
	MaxValue *float64       `json:"max_value,omitempty"`
	Step     *float64       `json:"step,omitempty"`
	Scoring  map[string]int `json:"scoring,omitempty"`
}

func ptr(f float64) *float64 { return &f }

// yesNoNA is the most common dropdown shape on the form.
var yesNoNA = []string{"Yes", "No", "NA"}

// Defaults returns the full default field catalog in form order. The slice
// is freshly allocated on each call so callers may mutate it.
func Defaults() []Field {
	return []Field{
		{
			Name:     "Level",
			Type:     TypeDropdown,
			Options:  []string{"Level 1", "Level 2", "Level 3", "Level 4", "Level 5"},
			Required: true,
		},
		{
			Name:     "Session type",
			Type:     TypeDropdown,
			Options:  []string{"Online", "Offline", "Hybrid"},
			Required: true,
		},
		{Name: "Day/Number", Type: TypeText, Required: true},
		{Name: "Group Code", Type: TypeText, Required: true},
		{Name: "Recorded session link", Type: TypeText},
		{
			Name: "Month",
			Type: TypeDropdown,
			Options: []string{
				"January", "February", "March", "April", "May", "June",
				"July", "August", "September", "October", "November", "December",
			},
			Required: true,
		},
		{Name: "Session Date", Type: TypeDate, Required: true},
		{
			Name: "Governorate",
			Type: TypeDropdown,
			Options: []string{
				"Cairo", "Alexandria", "Giza", "Qalyubia", "Port Said", "Suez",
				"Luxor", "Aswan", "Asyut", "Beheira", "Beni Suef", "Dakahlia",
				"Damietta", "Fayyum", "Gharbia", "Ismailia", "Kafr el-Sheikh",
				"Matrouh", "Minya", "Monufia", "New Valley", "North Sinai",
				"Qena", "Red Sea", "Sharqia", "Sohag", "South Sinai",
			},
			Required: true,
		},
		{Name: "Area", Type: TypeText, Required: true},
		{Name: "Center Name", Type: TypeText, Required: true},
		{Name: "Instructor Code", Type: TypeText, Required: true},
		{Name: "Instructor Name", Type: TypeText, Required: true},
		{
			Name:     "Camera",
			Type:     TypeDropdown,
			Options:  []string{"Working", "Not Working"},
			Required: true,
			Scoring:  map[string]int{"Working": 5, "Not Working": 0},
		},
		{
			Name:     "Camera quality",
			Type:     TypeDropdown,
			Options:  []string{"Clear", "Not clear enough", "Bad quality", "NA"},
			Required: true,
			Scoring:  map[string]int{"Clear": 5, "Not clear enough": 3, "Bad quality": 1, "NA": 0},
		},
		{
			Name: "Camera Coverage",
			Type: TypeDropdown,
			Options: []string{
				"Full coverage", "Instructor isn't appear", "Some students are not appear",
				"Students are not appear", "Neither students nor instructor appear",
			},
			Required: true,
			Scoring: map[string]int{
				"Full coverage":                          5,
				"Instructor isn't appear":                3,
				"Some students are not appear":           2,
				"Students are not appear":                1,
				"Neither students nor instructor appear": 0,
			},
		},
		{
			Name:     "Sound",
			Type:     TypeDropdown,
			Options:  []string{"Working excellent", "Good quality", "Bad quality", "Not working"},
			Required: true,
			Scoring:  map[string]int{"Working excellent": 5, "Good quality": 3, "Bad quality": 1, "Not working": 0},
		},
		{
			Name:     "Internet connection",
			Type:     TypeDropdown,
			Options:  []string{"Excellent", "Frequent Disconnects", "Poor Connection", "Non-Operational"},
			Required: true,
			Scoring:  map[string]int{"Excellent": 5, "Frequent Disconnects": 3, "Poor Connection": 1, "Non-Operational": 0},
		},
		{
			Name:     "Full Session?",
			Type:     TypeDropdown,
			Options:  yesNoNA,
			Required: true,
			Scoring:  map[string]int{"Yes": 10, "No": 0, "NA": 0},
		},
		{
			Name:     "Session duration ( hours)",
			Type:     TypeNumber,
			Required: true,
			MinValue: ptr(0),
			MaxValue: ptr(24),
			Step:     ptr(0.5),
		},
		{
			Name:     "Students seated",
			Type:     TypeDropdown,
			Options:  []string{"Yes", "No", "NA", "No not seated in place"},
			Required: true,
			Scoring:  map[string]int{"Yes": 5, "No": 0, "NA": 0, "No not seated in place": 0},
		},
		{
			Name:     "Coordinator appearance",
			Type:     TypeDropdown,
			Options:  yesNoNA,
			Required: true,
			Scoring:  map[string]int{"Yes": 5, "No": 0, "NA": 0},
		},
		{
			Name:     "Room adequacy",
			Type:     TypeDropdown,
			Options:  []string{"Room adequate", "Room not adequate", "NA"},
			Required: true,
			Scoring:  map[string]int{"Room adequate": 5, "Room not adequate": 0, "NA": 0},
		},
		{
			Name:     "Instructor appearance",
			Type:     TypeDropdown,
			Options:  yesNoNA,
			Required: true,
			Scoring:  map[string]int{"Yes": 5, "No": 0, "NA": 0},
		},
		{
			Name:     "Instructor Attitude",
			Type:     TypeDropdown,
			Options:  []string{"Good", "Bad", "NA"},
			Required: true,
			Scoring:  map[string]int{"Good": 5, "Bad": 0, "NA": 0},
		},
		{
			Name:     "English language of instructor",
			Type:     TypeDropdown,
			Options:  []string{"Excellent", "Good", "Bad", "NA"},
			Required: true,
			Scoring:  map[string]int{"Excellent": 5, "Good": 3, "Bad": 0, "NA": 0},
		},
		{
			Name:     "Language of instructor (slang language is used)",
			Type:     TypeDropdown,
			Options:  []string{"No", "Yes", "NA"},
			Required: true,
			Scoring:  map[string]int{"No": 5, "Yes": 0, "NA": 0},
		},
		{
			Name:     "Activity",
			Type:     TypeDropdown,
			Options:  yesNoNA,
			Required: true,
			Scoring:  map[string]int{"Yes": 5, "No": 0, "NA": 0},
		},
		{
			Name:     "Break",
			Type:     TypeDropdown,
			Options:  yesNoNA,
			Required: true,
			Scoring:  map[string]int{"Yes": 5, "No": 0, "NA": 0},
		},
		{
			Name:     "Break Time ( Minutes)",
			Type:     TypeNumber,
			Required: true,
			MinValue: ptr(0),
			MaxValue: ptr(120),
			Step:     ptr(1),
		},
		{
			Name:     "Students feedback average score",
			Type:     TypeNumber,
			Required: true,
			MinValue: ptr(0),
			MaxValue: ptr(100),
			Step:     ptr(0.1),
		},
		{
			Name:     "Coordinator feedback score",
			Type:     TypeNumber,
			Required: true,
			MinValue: ptr(0),
			MaxValue: ptr(100),
			Step:     ptr(0.1),
		},
		{Name: "Positive Comments", Type: TypeTextarea},
		{Name: "Negative Comments", Type: TypeTextarea},
		{Name: "Auditor", Type: TypeText, Required: true},
		{Name: "Project Coordinator", Type: TypeText, Required: true},
		{Name: "Students Comment", Type: TypeTextarea},
		{
			Name:     "Validity",
			Type:     TypeDropdown,
			Options:  []string{"Valid", "Invalid", "Pending Review"},
			Required: true,
		},
		{Name: "Our Comments", Type: TypeTextarea},
	}
}

// DefaultFieldNames returns the default catalog's field names in form order.
func DefaultFieldNames() []string {
	defaults := Defaults()
	names := make([]string, len(defaults))
	for i, f := range defaults {
		names[i] = f.Name
	}
	return names
}
