package router

import (
	"github.com/labstack/echo/v4"

	activityCtrl "agrisentry/pkg/activity/controller"
	advisorCtrl "agrisentry/pkg/advisor/controller"
	authCtrl "agrisentry/pkg/auth/controller"
	cropCtrl "agrisentry/pkg/crop/controller"
	fieldCtrl "agrisentry/pkg/field/controller"
	kbCtrl "agrisentry/pkg/kb/controller"
	marketCtrl "agrisentry/pkg/market/controller"
	"agrisentry/pkg/middleware"
)

type Handlers struct {
	Fields     fieldCtrl.FieldController
	Activities activityCtrl.ActivityController
	Crops      cropCtrl.CropController
	Advisor    advisorCtrl.AdvisorController
	KB         kbCtrl.KBController
	Market     marketCtrl.MarketController
	Auth       authCtrl.AuthController
	Health     interface{ Health(echo.Context) error }
	Live       interface{ ServeWS(echo.Context) error }
}

// New registers every route. With enableAuth, routes that act for a user
// require a uid header or cookie and /devlogin is not mounted; otherwise
// DevLogin assigns one.
func New(e *echo.Echo, h Handlers, enableAuth bool) *echo.Echo {
	e.GET("/health", h.Health.Health)

	api := e.Group("")
	if enableAuth {
		api.Use(middleware.RequireUser(true))
	} else {
		api.Use(middleware.DevLogin())
		api.GET("/devlogin", h.Auth.DevLogin)
	}
	api.GET("/whoami", h.Auth.WhoAmI)

	// simulation
	api.GET("/clock", h.Fields.Clock)
	api.GET("/fields", h.Fields.List)
	api.GET("/fields/history", h.Fields.History)
	api.GET("/fields/:id", h.Fields.Get)
	api.GET("/ws", h.Live.ServeWS)

	api.POST("/activities", h.Activities.Create)
	api.GET("/activities", h.Activities.List)
	api.GET("/activities/export.xlsx", h.Activities.Export)
	api.PATCH("/activities/:id", h.Activities.Patch)
	api.DELETE("/activities/:id", h.Activities.Delete)

	// registry
	api.POST("/my-fields", h.Crops.Create)
	api.GET("/my-fields", h.Crops.List)
	api.GET("/my-fields/:id", h.Crops.Get)
	api.DELETE("/my-fields/:id", h.Crops.Delete)

	api.POST("/advisor/chat", h.Advisor.Chat)
	api.GET("/advisor/sessions/:id", h.Advisor.Session)
	api.POST("/advisor/diagnose", h.Advisor.Diagnose)

	api.POST("/kb/ingest", h.KB.IngestText)
	api.POST("/kb/ingest/url", h.KB.IngestURL)
	api.GET("/kb/search", h.KB.Search)
	api.GET("/kb/docs", h.KB.ListDocs)

	api.GET("/market/prices", h.Market.Prices)
	api.POST("/market/predict", h.Market.Predict)
	api.GET("/market/locate", h.Market.Locate)
	return e
}
