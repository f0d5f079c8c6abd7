package internal

import (
	"net/http"
	"rld/internal/controllers"
	"rld/internal/providers"
	"rld/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, adminController *controllers.AdminController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/rewards/quote", http.HandlerFunc(apiController.QuoteReward))
	routers.Post("/engagements", http.HandlerFunc(apiController.ReceiveEngagement))
	routers.Post("/violations", http.HandlerFunc(apiController.ReceiveViolation))
	routers.Get("/status", http.HandlerFunc(apiController.GetStatus))
	routers.Get("/record", http.HandlerFunc(apiController.GetRecord))

	routers.Post("/admin/block", providers.AdminOnly(conf.Admin.Key, http.HandlerFunc(adminController.Block)))
	routers.Post("/admin/clear", providers.AdminOnly(conf.Admin.Key, http.HandlerFunc(adminController.Clear)))
	return routers
}
