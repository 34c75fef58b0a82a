package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxAnswerLength int           `json:"max_answer_length"`
	EnableCORS      bool          `json:"enable_cors"`
	AllowedOrigins  []string      `json:"allowed_origins"`
	TrustedProxies  []string      `json:"trusted_proxies"`
	RequestTimeout  time.Duration `json:"request_timeout"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxAnswerLength: 2000,
		EnableCORS:      true,
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		TrustedProxies:  []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		RequestTimeout:  30 * time.Second,
	}
}

// SecurityMiddleware provides input sanitization and security middleware
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{config: config}
}

// ValidateAnswer performs validation on a single free-text answer value
func (sm *SecurityMiddleware) ValidateAnswer(input string) error {
	// Check length limits
	if len(input) > sm.config.MaxAnswerLength {
		return fmt.Errorf("answer exceeds maximum length of %d characters", sm.config.MaxAnswerLength)
	}

	// Check for null bytes (potential injection attempt)
	if strings.Contains(input, "\x00") {
		return fmt.Errorf("answer contains invalid characters")
	}

	// Validate UTF-8 encoding
	if !utf8.ValidString(input) {
		return fmt.Errorf("answer contains invalid UTF-8 encoding")
	}

	// Check for suspicious patterns (basic XSS/SQL injection detection)
	suspiciousPatterns := []string{
		`<script`, `</script>`, `javascript:`,
		`union select`, `drop table`, `alter table`,
		`xp_`, `sp_`,
	}

	inputLower := strings.ToLower(input)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(inputLower, pattern) {
			return fmt.Errorf("answer contains suspicious patterns")
		}
	}

	return nil
}

var (
	scriptPattern  = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// SanitizeAnswer sanitizes a free-text answer by removing potentially dangerous content
func (sm *SecurityMiddleware) SanitizeAnswer(input string) string {
	input = strings.TrimSpace(input)

	// Remove script tags and their content
	input = scriptPattern.ReplaceAllString(input, "")

	// Remove other HTML tags (but keep content between them)
	input = htmlTagPattern.ReplaceAllString(input, "")

	// Collapse whitespace runs
	input = spacePattern.ReplaceAllString(input, " ")

	return input
}

// SanitizeAnswers sanitizes every string value in an answer set in place
// and reports the first validation failure with the offending field name.
func (sm *SecurityMiddleware) SanitizeAnswers(answers map[string]any) error {
	for field, value := range answers {
		s, ok := value.(string)
		if !ok {
			continue
		}

		s = sm.SanitizeAnswer(s)
		if err := sm.ValidateAnswer(s); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		answers[field] = s
	}
	return nil
}

// ValidateContentType validates request content type
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data",
	}

	if contentType != "" {
		found := false
		for _, allowed := range allowedTypes {
			if strings.Contains(strings.ToLower(contentType), allowed) {
				found = true
				break
			}
		}

		if !found {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "unsupported content type",
			})
			c.Abort()
			return
		}
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)

	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

