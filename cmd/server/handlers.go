package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdelrhman06/session-audit-api/internal/database"
	"github.com/abdelrhman06/session-audit-api/internal/errors"
	"github.com/abdelrhman06/session-audit-api/internal/fieldconfig"
	"github.com/abdelrhman06/session-audit-api/internal/scoring"
	"github.com/abdelrhman06/session-audit-api/internal/types"
)

const apiVersion = "1.0.0"

func (app *application) respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if verr, ok := err.(*fieldconfig.ValidationError); ok {
		appErr = errors.NewValidationError(verr.Error(), verr)
	} else {
		appErr = errors.ToAppError(err)
	}
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

func (app *application) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   apiVersion,
		"database":  app.db.GetPoolStats(),
	})
}

// handleScore computes the score for an answer set without persisting it
func (app *application) handleScore(c *gin.Context) {
	start := time.Now()

	var req types.ScoreRequest
	if err := c.BindJSON(&req); err != nil {
		app.respondError(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	if err := app.secmw.SanitizeAnswers(req.Answers); err != nil {
		app.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	result := app.audits.Preview(req.Answers)

	app.metrics.IncrementScoresComputed()
	app.logger.ScoringLogger(result.TotalScore, result.SessionRating, len(req.Answers), time.Since(start), c.GetBool("cache_hit"))

	c.JSON(http.StatusOK, gin.H{
		"total_score":        result.TotalScore,
		"session_rating":     result.SessionRating,
		"score_breakdown":    result.ScoreBreakdown,
		"max_possible_score": result.MaxPossibleScore,
		"summary":            scoring.Summary(req.Answers),
	})
}

func (app *application) handleSubmitAudit(c *gin.Context) {
	var req types.SubmitAuditRequest
	if err := c.BindJSON(&req); err != nil {
		app.respondError(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	if err := app.secmw.SanitizeAnswers(req.Answers); err != nil {
		app.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	record, err := app.audits.Submit(c.Request.Context(), req.Answers)
	if err != nil {
		app.respondError(c, err)
		return
	}

	app.metrics.IncrementAuditsSubmitted()
	c.JSON(http.StatusCreated, record)
}

func (app *application) handleListAudits(c *gin.Context) {
	filter := auditFilterFromQuery(c)

	records, err := app.audits.List(c.Request.Context(), filter)
	if err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": records,
		"count":  len(records),
	})
}

func (app *application) handleGetAudit(c *gin.Context) {
	record, err := app.audits.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			err = errors.NewNotFoundError("audit", c.Param("id"))
		}
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (app *application) handleUpdateAudit(c *gin.Context) {
	var req types.UpdateAuditRequest
	if err := c.BindJSON(&req); err != nil {
		app.respondError(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	if err := app.secmw.SanitizeAnswers(req.Edits); err != nil {
		app.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	record, err := app.audits.UpdateAnswers(c.Request.Context(), c.Param("id"), req.Edits)
	if err != nil {
		if err == sql.ErrNoRows {
			err = errors.NewNotFoundError("audit", c.Param("id"))
		}
		app.respondError(c, err)
		return
	}

	app.metrics.IncrementAuditsUpdated()
	c.JSON(http.StatusOK, record)
}

func (app *application) handleDeleteAudit(c *gin.Context) {
	id := c.Param("id")

	if err := app.audits.Delete(c.Request.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			err = errors.NewNotFoundError("audit", id)
		}
		app.respondError(c, err)
		return
	}

	app.metrics.IncrementAuditsDeleted()
	c.JSON(http.StatusOK, gin.H{
		"message": "audit deleted",
		"id":      id,
	})
}

func (app *application) handleExportAudits(c *gin.Context) {
	filter := auditFilterFromQuery(c)

	filename := fmt.Sprintf("session-audits-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := app.audits.ExportCSV(c.Request.Context(), c.Writer, filter); err != nil {
		app.respondError(c, err)
		return
	}

	app.metrics.IncrementExportsGenerated()
}

func (app *application) handleStatistics(c *gin.Context) {
	statistics, err := app.stats.GetStatistics(c.Request.Context())
	if err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, statistics)
}

func (app *application) handleListFields(c *gin.Context) {
	fields, err := app.fields.List(c.Request.Context())
	if err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fields": fields,
		"count":  len(fields),
	})
}

func (app *application) handleAdminLogin(c *gin.Context) {
	var req types.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		app.respondError(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	token, err := app.admin.Login(req.Username, req.Password)
	if err != nil {
		app.logger.SecurityLogger("admin_login_failed", c.ClientIP(), c.GetHeader("User-Agent"), map[string]interface{}{
			"username": req.Username,
		})
		app.respondError(c, errors.NewUnauthorizedError("invalid credentials", nil))
		return
	}

	c.JSON(http.StatusOK, types.LoginResponse{Token: token})
}

// adminAuthRequired validates the Bearer token on admin routes
func (app *application) adminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			appErr := errors.NewUnauthorizedError("missing bearer token", nil)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		username, err := app.admin.ValidateSessionToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			app.logger.SecurityLogger("admin_token_rejected", c.ClientIP(), c.GetHeader("User-Agent"), map[string]interface{}{
				"error": err.Error(),
			})
			appErr := errors.NewUnauthorizedError("invalid or expired token", err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		c.Set("admin_user", username)
		c.Next()
	}
}

func (app *application) handleUpsertField(c *gin.Context) {
	var field fieldconfig.Field
	if err := c.BindJSON(&field); err != nil {
		app.respondError(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	// The path parameter wins over whatever the body says
	field.Name = c.Param("name")

	if !fieldconfig.ValidType(field.Type) {
		app.respondError(c, errors.NewValidationError(fmt.Sprintf("unknown field type %q", field.Type)))
		return
	}

	if err := app.fields.Upsert(c.Request.Context(), field); err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, field)
}

func (app *application) handleCreateField(c *gin.Context) {
	var field fieldconfig.Field
	if err := c.BindJSON(&field); err != nil {
		app.respondError(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	if strings.TrimSpace(field.Name) == "" {
		app.respondError(c, errors.NewValidationError("field name is required"))
		return
	}

	if !fieldconfig.ValidType(field.Type) {
		app.respondError(c, errors.NewValidationError(fmt.Sprintf("unknown field type %q", field.Type)))
		return
	}

	if err := app.fields.Upsert(c.Request.Context(), field); err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, field)
}

func (app *application) handleDeleteField(c *gin.Context) {
	name := c.Param("name")

	if err := app.fields.Delete(c.Request.Context(), name); err != nil {
		if err == sql.ErrNoRows {
			err = errors.NewNotFoundError("field", name)
		}
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "field deleted",
		"name":    name,
	})
}

func (app *application) handleResetFields(c *gin.Context) {
	if err := app.fields.Reset(c.Request.Context()); err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "field catalog reset to defaults"})
}

func (app *application) handleExportFields(c *gin.Context) {
	data, err := app.fields.ExportJSON(c.Request.Context())
	if err != nil {
		app.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="field-config.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (app *application) handleImportFields(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		app.respondError(c, errors.NewValidationError("failed to read request body", err))
		return
	}

	if err := app.fields.ImportJSON(c.Request.Context(), data); err != nil {
		app.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "field catalog imported"})
}

func (app *application) handleRetentionPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, app.retention.GetRetentionInfo())
}

func (app *application) handleRetentionStats(c *gin.Context) {
	stats, err := app.retention.GetRetentionStats()
	if err != nil {
		app.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (app *application) handleRetentionCleanup(c *gin.Context) {
	deleted, err := app.retention.CleanupOldAudits()
	if err != nil {
		app.respondError(c, err)
		return
	}

	if deleted > 0 {
		app.stats.Invalidate()
	}

	c.JSON(http.StatusOK, gin.H{"audits_deleted": deleted})
}

func auditFilterFromQuery(c *gin.Context) database.AuditFilter {
	filter := database.AuditFilter{
		Governorate: c.Query("governorate"),
		Level:       c.Query("level"),
		Rating:      c.Query("rating"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			filter.Limit = l
		}
	}

	return filter
}
