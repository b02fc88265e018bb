package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/hyeonkim-dev/docintake/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// HandleConnectQR returns a PNG QR code carrying the public WebSocket URL so
// a phone can join an intake session by scanning it.
// GET /api/intake/v1/connect-qr?size=200x200
func HandleConnectQR(c *gin.Context) {
	cfg := tool.GetCurrentConfig()
	data := cfg.PublicWSURL
	if data == "" {
		c.JSON(http.StatusServiceUnavailable, tool.FastReturnError("Public WebSocket URL is not configured"))
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
