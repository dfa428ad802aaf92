package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// WelcomeMessage is served at / when no front-end build is configured.
const WelcomeMessage = "Welcome to the Newton-Raphson Method Server!"

// frontend returns the NoRoute handler. Unknown /api/ paths get a JSON 404.
// Other GET and HEAD requests are served from dir with index.html as the
// fallback for client-side routes; without a build only / answers, with
// WelcomeMessage.
func frontend(dir string) gin.HandlerFunc {
	index := ""
	if dir != "" {
		candidate := filepath.Join(dir, "index.html")
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			index = candidate
		}
	}
	fs := http.Dir(dir)

	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || p == "/api" ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if index == "" {
			if p == "/" {
				c.String(http.StatusOK, WelcomeMessage)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		clean := path.Clean("/" + p)
		if f, err := fs.Open(clean); err == nil {
			st, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !st.IsDir() && !strings.HasSuffix(clean, "/index.html") {
				c.FileFromFS(clean, fs)
				return
			}
		}
		c.File(index)
	}
}
