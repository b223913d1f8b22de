package web

import (
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

// Dashboard assets ship inside the binary so the daemon runs from any
// working directory.
//
//go:embed static
var staticFS embed.FS

func staticHandler() fiber.Handler {
	return filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		Index:      "index.html",
	})
}
