package webui

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewRouter wires the chat page routes.
func NewRouter(page *Page) *gin.Engine {
	router := gin.New()

	router.Use(logger.GinLogger())
	router.Use(gin.Recovery())

	tmpl := template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	router.Use(page.sessionMiddleware())

	router.GET("/", page.Index)
	router.POST("/send", page.Send)
	router.POST("/model", page.SelectModel)
	router.POST("/clear", page.Clear)

	return router
}
