package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/pkg/errors"
)

// HTTPErrorsConfig controls response normalization.
type HTTPErrorsConfig struct {
	// BodyMaxSize is the largest response body, in bytes, the unit will
	// buffer. Larger bodies are replaced with a 413 envelope. Zero or
	// negative disables the cap.
	BodyMaxSize int
}

// HTTPErrors rewrites framework-shaped error responses into the normalized
// envelope. Responses with a media content type (image, audio, video) stream
// through untouched; everything else is buffered so that 405 and 422
// responses can be rewritten before reaching the client.
func HTTPErrors(cfg HTTPErrorsConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		buffer := &bufferingWriter{ResponseWriter: c.Writer, maxSize: cfg.BodyMaxSize}
		c.Writer = buffer

		c.Next()

		c.Writer = buffer.ResponseWriter
		if buffer.passthrough {
			return
		}
		if buffer.overflowed {
			overrideResponse(c, errors.PayloadTooLarge())
			return
		}

		switch buffer.Status() {
		case http.StatusMethodNotAllowed:
			overrideResponse(c, errors.MethodNotAllowed())
		case http.StatusUnprocessableEntity:
			// The framework's validation message becomes the envelope
			// message verbatim.
			overrideResponse(c, errors.UnprocessableEntity(buffer.body.String()))
		default:
			if buffer.body.Len() > 0 {
				c.Writer.Write(buffer.body.Bytes()) //nolint:errcheck
			}
		}
	}
}

// overrideResponse discards whatever the handler produced and writes the
// envelope for appErr instead. Headers have not been flushed yet, so the
// status and content type can still change.
func overrideResponse(c *gin.Context, appErr *errors.AppError) {
	header := c.Writer.Header()
	header.Del("Content-Length")
	header.Set("Content-Type", "application/json; charset=utf-8")

	payload, err := json.Marshal(appErr.Envelope(c.Request.Context()))
	if err != nil {
		payload = []byte(`{"code":500,"message":"Internal server error"}`)
		appErr = errors.InternalServerError("Internal server error")
	}

	c.Writer.WriteHeader(appErr.Status)
	c.Writer.Write(payload) //nolint:errcheck
}

// bufferingWriter captures the response body instead of sending it. The
// first write decides the mode: media content types switch to passthrough
// and delegate straight to the underlying writer.
type bufferingWriter struct {
	gin.ResponseWriter
	body        bytes.Buffer
	maxSize     int
	decided     bool
	passthrough bool
	overflowed  bool
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	if !w.decided {
		w.decided = true
		w.passthrough = isMediaContentType(w.Header().Get("Content-Type"))
	}
	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}
	if w.overflowed {
		return len(b), nil
	}
	if w.maxSize > 0 && w.body.Len()+len(b) > w.maxSize {
		w.overflowed = true
		w.body.Reset()
		return len(b), nil
	}
	return w.body.Write(b)
}

func (w *bufferingWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func isMediaContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") ||
		strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "video/")
}
