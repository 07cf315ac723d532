package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/radai/radai/internal/analyzer"
	"github.com/radai/radai/internal/consent"
	"github.com/radai/radai/internal/render"
	"github.com/radai/radai/internal/ultralytics"
	"github.com/radai/radai/web"
)

// MaxUploadSize caps the accepted image size.
const MaxUploadSize = 10 << 20

var allowedTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// RegisterRoutes wires the HTTP surface to the Gin router.
func RegisterRoutes(router *gin.Engine, a *analyzer.Analyzer, issuer *consent.Issuer) {
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/consent", func(c *gin.Context) {
		var req struct {
			Agree bool `json:"agree"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if !req.Agree {
			c.JSON(http.StatusBadRequest, gin.H{"error": "privacy policy must be accepted"})
			return
		}

		token, err := issuer.Issue()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	router.POST("/api/analyze", consent.Middleware(issuer), func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the upload limit"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}

		if mtype := mimetype.Detect(data); !isAllowedType(mtype.String()) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only PNG and JPEG images are supported"})
			return
		}

		result, err := a.Analyze(c.Request.Context(), data)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		annotated, err := encodeDataURL(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		raw := json.RawMessage("null")
		if len(result.Raw) > 0 {
			raw = json.RawMessage(result.Raw)
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":      result.RequestID,
			"message":         result.Verdict.Message,
			"positive":        result.Verdict.Positive,
			"detections":      result.Verdict.Detections,
			"annotated_image": annotated,
			"raw":             raw,
		})
	})
}

func isAllowedType(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

func encodeDataURL(result *analyzer.Result) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, result.Annotated); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// statusForError maps the analysis error kinds onto HTTP statuses. The
// underlying message is surfaced verbatim either way.
func statusForError(err error) int {
	var cfgErr *ultralytics.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusInternalServerError
	}
	var apiErr *ultralytics.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	var transportErr *ultralytics.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	var decodeErr *render.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
