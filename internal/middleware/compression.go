package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Content types to compress
	SkipPaths        []string // Paths excluded from compression
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		CompressionLevel: 6,
		ContentTypes: []string{
			"application/json",
			"text/csv",
			"text/plain",
			"text/html",
		},
		SkipPaths: []string{"/health"},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	return &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, config.CompressionLevel)
				return gz
			},
		},
	}
}

// Handler returns a Gin middleware function for response compression
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cm.clientAcceptsGzip(c) || cm.skipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		gz := cm.pool.Get().(*gzip.Writer)

		gzw := &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gz:             gz,
			cm:             cm,
		}
		c.Writer = gzw

		c.Next()

		gzw.close()
		cm.pool.Put(gz)
	}
}

// clientAcceptsGzip checks if the client accepts gzip compression
func (cm *CompressionMiddleware) clientAcceptsGzip(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept-Encoding"), "gzip")
}

func (cm *CompressionMiddleware) skipPath(path string) bool {
	for _, p := range cm.config.SkipPaths {
		if path == p {
			return true
		}
	}
	return false
}

// shouldCompress checks if the content type should be compressed
func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipResponseWriter wraps a gin.ResponseWriter with gzip compression.
// The compress-or-not decision happens on the first write, once the
// handler has set the Content-Type.
type gzipResponseWriter struct {
	gin.ResponseWriter
	gz          *gzip.Writer
	cm          *CompressionMiddleware
	decided     bool
	compressing bool
	rawBytes    int64
}

func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	if !gzw.decided {
		gzw.decided = true
		if gzw.cm.shouldCompress(gzw.Header().Get("Content-Type")) {
			gzw.compressing = true
			gzw.Header().Set("Content-Encoding", "gzip")
			gzw.Header().Set("Vary", "Accept-Encoding")
			gzw.Header().Del("Content-Length")
			gzw.gz.Reset(gzw.ResponseWriter)
		}
	}

	gzw.rawBytes += int64(len(data))

	if gzw.compressing {
		return gzw.gz.Write(data)
	}
	return gzw.ResponseWriter.Write(data)
}

func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// close flushes the gzip stream and records stats
func (gzw *gzipResponseWriter) close() {
	if gzw.compressing {
		gzw.gz.Close()
	}
	gzw.cm.stats.RecordRequest(gzw.rawBytes, int64(gzw.ResponseWriter.Size()), gzw.compressing)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(0)
	if cs.TotalBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"compressed_bytes":    cs.CompressedBytes,
		"compression_ratio":   compressionRatio,
		"compression_savings": 1.0 - compressionRatio,
		"compression_enabled": cs.TotalRequests > 0 && cs.CompressedRequests > 0,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
