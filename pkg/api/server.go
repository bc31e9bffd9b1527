package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/nextdepartures/pkg/api/routes"
	"github.com/travigo/nextdepartures/pkg/dataaggregator"
)

func NewApp(reconciler *dataaggregator.Reconciler) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.LinesRouter(group.Group("/lines"), reconciler)

	return webApp
}
