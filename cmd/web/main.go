package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"meta-lens/pkg/analyzer"
	"meta-lens/pkg/pipeline"
	"meta-lens/pkg/types"
	"meta-lens/pkg/utils"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pierrec/lz4/v4"
	"github.com/xyproto/env/v2"
)

type serverConfig struct {
	Port       string
	MaxBodyMB  int
	CORSOrigin string
}

func loadConfig() serverConfig {
	return serverConfig{
		Port:       env.Str("PORT", "3000"),
		MaxBodyMB:  env.Int("METALENS_MAX_BODY_MB", 256),
		CORSOrigin: env.Str("METALENS_CORS_ORIGIN", "*"),
	}
}

func main() {
	log.SetHandler(cli.New(os.Stderr))
	cfg := loadConfig()

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(cfg)

	fmt.Printf("http://127.0.0.1:%s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newRouter(cfg serverConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	limit := int64(cfg.MaxBodyMB) << 20
	r.POST("/api/decode", handleDecode(limit))
	r.POST("/api/decrypt", handleDecrypt(limit))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html", []byte(fallbackHTML))
	})
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("request")
	}
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, types.DecodeOutput{
		OK:    false,
		Error: &types.ErrorInfo{Code: code, Message: message},
	})
}

// runRequest reads the uploaded binary and runs the pipeline. It writes the
// error response itself and reports false when the request cannot proceed.
func runRequest(c *gin.Context, limit int64) (*pipeline.Result, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorJSON(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error())
			return nil, false
		}
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return nil, false
	}
	if len(body) == 0 {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Empty request body")
		return nil, false
	}

	cfg := pipeline.DefaultConfig()
	if keyHex := c.Query("key_hex"); keyHex != "" {
		key, err := utils.HexToBytes(keyHex)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "INVALID_KEY", err.Error())
			return nil, false
		}
		cfg.Key = key
	}

	res, err := pipeline.Run(body, cfg, pipeline.Options{DecryptStrings: queryBool(c, "decrypt_strings")})
	if err != nil {
		errorJSON(c, http.StatusUnprocessableEntity, "EXTRACTION_FAILED", err.Error())
		return nil, false
	}
	log.WithFields(log.Fields{
		"ciphertext": utils.FormatSize(res.CiphertextSize),
		"valid":      res.Valid(),
	}).Info("decoded upload")
	return res, true
}

func handleDecode(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, ok := runRequest(c, limit)
		if !ok {
			return
		}
		report := analyzer.Report(res, queryBool(c, "decrypt_strings"), queryBool(c, "verbose"))
		c.JSON(http.StatusOK, report)
	}
}

func handleDecrypt(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, ok := runRequest(c, limit)
		if !ok {
			return
		}
		c.Header("Content-Disposition", `attachment; filename="global-metadata.dat"`)
		c.Header("X-Metadata-Valid", strconv.FormatBool(res.Valid()))

		if c.Query("compress") != "lz4" {
			c.Data(http.StatusOK, "application/octet-stream", res.Plaintext)
			return
		}
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(res.Plaintext); err != nil {
			errorJSON(c, http.StatusInternalServerError, "IO_ERROR", err.Error())
			return
		}
		if err := zw.Close(); err != nil {
			errorJSON(c, http.StatusInternalServerError, "IO_ERROR", err.Error())
			return
		}
		c.Header("Content-Disposition", `attachment; filename="global-metadata.dat.lz4"`)
		c.Data(http.StatusOK, "application/x-lz4", buf.Bytes())
	}
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Meta Lens - IL2CPP Metadata Decoder</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #3a7bd5; }
        button { background: #3a7bd5; color: white; padding: 10px 20px; border: none; cursor: pointer; }
        pre { background: #f5f5f5; padding: 15px; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>Meta Lens</h1>
    <p>Upload a GameAssembly.dll to extract and decode its global-metadata.dat:</p>
    <input type="file" id="input">
    <label><input type="checkbox" id="strings"> Decrypt string literals</label>
    <br><br>
    <button onclick="decode()">Decode</button>
    <h2>Result:</h2>
    <pre id="output">Results will appear here...</pre>

    <script>
        async function decode() {
            const file = document.getElementById('input').files[0];
            const strings = document.getElementById('strings').checked;
            const output = document.getElementById('output');
            if (!file) {
                output.textContent = 'Choose a file first';
                return;
            }

            try {
                const response = await fetch('/api/decode?verbose=true&decrypt_strings=' + strings, {
                    method: 'POST',
                    headers: {'Content-Type': 'application/octet-stream'},
                    body: file
                });
                const result = await response.json();
                output.textContent = JSON.stringify(result, null, 2);
            } catch (err) {
                output.textContent = 'Error: ' + err.message;
            }
        }
    </script>
</body>
</html>`
