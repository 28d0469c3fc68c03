package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/vitrine/internal/auth"
	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/auth/session"
	"github.com/smallbiznis/vitrine/internal/authorization"
	"github.com/smallbiznis/vitrine/internal/catalogimport"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	"github.com/smallbiznis/vitrine/internal/config"
	"github.com/smallbiznis/vitrine/internal/customer"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	"github.com/smallbiznis/vitrine/internal/delivery"
	deliverydomain "github.com/smallbiznis/vitrine/internal/delivery/domain"
	"github.com/smallbiznis/vitrine/internal/heroslide"
	herodomain "github.com/smallbiznis/vitrine/internal/heroslide/domain"
	"github.com/smallbiznis/vitrine/internal/observability"
	obslogger "github.com/smallbiznis/vitrine/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/vitrine/internal/observability/metrics"
	obstracing "github.com/smallbiznis/vitrine/internal/observability/tracing"
	"github.com/smallbiznis/vitrine/internal/order"
	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
	"github.com/smallbiznis/vitrine/internal/product"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/smallbiznis/vitrine/internal/providers/pdf"
	"github.com/smallbiznis/vitrine/internal/ratelimit"
	"github.com/smallbiznis/vitrine/internal/taxonomy"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	authorization.Module,
	auth.Module,
	session.Module,
	ratelimit.Module,
	pdf.Module,
	taxonomy.Module,
	product.Module,
	customer.Module,
	order.Module,
	delivery.Module,
	heroslide.Module,
	catalogimport.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if prefix := strings.TrimSpace(cfg.Media.URLPrefix); prefix != "" && cfg.Media.Root != "" {
		r.Static(prefix, cfg.Media.Root)
	}

	return r
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.Engine(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	genID        *snowflake.Node
	authsvc      authdomain.Service
	sessions     *session.Manager
	authzSvc     authorization.Service
	loginLimiter *ratelimit.LoginLimiter
	locker       *ratelimit.Locker
	obsMetrics   *obsmetrics.Metrics
	taxonomySvc  taxdomain.Service
	productSvc   productdomain.Service
	customerSvc  customerdomain.Service
	orderSvc     orderdomain.Service
	deliverySvc  deliverydomain.Service
	heroSlideSvc herodomain.Service
	importSvc    importdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	GenID        *snowflake.Node
	Authsvc      authdomain.Service
	Sessions     *session.Manager
	AuthzSvc     authorization.Service
	LoginLimiter *ratelimit.LoginLimiter `optional:"true"`
	Locker       *ratelimit.Locker       `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
	TaxonomySvc  taxdomain.Service
	ProductSvc   productdomain.Service
	CustomerSvc  customerdomain.Service
	OrderSvc     orderdomain.Service
	DeliverySvc  deliverydomain.Service
	HeroSlideSvc herodomain.Service
	ImportSvc    importdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		genID:        p.GenID,
		authsvc:      p.Authsvc,
		sessions:     p.Sessions,
		authzSvc:     p.AuthzSvc,
		loginLimiter: p.LoginLimiter,
		locker:       p.Locker,
		obsMetrics:   p.ObsMetrics,
		taxonomySvc:  p.TaxonomySvc,
		productSvc:   p.ProductSvc,
		customerSvc:  p.CustomerSvc,
		orderSvc:     p.OrderSvc,
		deliverySvc:  p.DeliverySvc,
		heroSlideSvc: p.HeroSlideSvc,
		importSvc:    p.ImportSvc,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/categories/", s.ListPublicCategories)
	api.GET("/categories/:slug/", s.GetCategory)
	api.GET("/subcategories/", s.ListPublicSubCategories)
	api.GET("/subcategories/homepage/", s.ListHomepageSubCategories)
	api.GET("/subcategories/:slug/", s.GetSubCategory)
	api.GET("/types/", s.ListPublicTypes)
	api.GET("/brands/", s.ListPublicBrands)
	api.GET("/collections/", s.ListPublicCollections)

	// -------- Products --------
	api.GET("/products/", s.ListProducts)
	api.GET("/products/bestsellers/", s.CuratedProducts(productdomain.CuratedBestsellers))
	api.GET("/products/new/", s.CuratedProducts(productdomain.CuratedNew))
	api.GET("/products/featured/", s.CuratedProducts(productdomain.CuratedFeatured))
	api.GET("/products/by_subcategory/", s.CuratedProducts(productdomain.CuratedBySubCategory))
	api.GET("/products/ad_slider/", s.CuratedProducts(productdomain.CuratedAdSlider))
	api.GET("/products/:slug/", s.GetProductBySlug)

	// -------- Hero slides --------
	api.GET("/hero-slides/", s.ListActiveHeroSlides)

	// -------- Orders --------
	api.POST("/orders/create/", s.CreateOrder)
	api.GET("/orders/:id/", s.GetOrder)
	api.POST("/orders/:id/confirm/", s.SessionRequired(), s.authorize(authorization.ObjectOrder, authorization.ActionManage), s.ConfirmOrder)
	api.POST("/orders/:id/cancel/", s.SessionRequired(), s.authorize(authorization.ObjectOrder, authorization.ActionManage), s.CancelOrder)
	api.PATCH("/orders/:id/update-status/", s.SessionRequired(), s.authorize(authorization.ObjectOrder, authorization.ActionManage), s.UpdateOrderStatus)

	// -------- Deliveries (staff) --------
	deliveries := api.Group("/deliveries", s.SessionRequired())
	s.registerDeliveryRoutes(deliveries, "/")
}

// registerDeliveryRoutes mounts the delivery endpoints on both the staff API
// and the admin API. suffix is appended to every path.
func (s *Server) registerDeliveryRoutes(g *gin.RouterGroup, suffix string) {
	view := s.authorize(authorization.ObjectDelivery, authorization.ActionView)
	manage := s.authorize(authorization.ObjectDelivery, authorization.ActionManage)

	root := strings.TrimSuffix(suffix, "/")
	g.GET(root+suffix, view, s.ListDeliveries)
	g.POST(root+suffix, manage, s.CreateDelivery)
	g.GET("/track/:tracking"+suffix, view, s.TrackDelivery)
	g.GET("/:id"+suffix, view, s.GetDelivery)
	g.PATCH("/:id"+suffix, manage, s.UpdateDelivery)
	g.DELETE("/:id"+suffix, manage, s.DeleteDelivery)
	g.PATCH("/:id/status"+suffix, manage, s.UpdateDeliveryStatus)
	g.GET("/:id/history"+suffix, view, s.ListDeliveryHistory)
	g.POST("/:id/history"+suffix, manage, s.AddDeliveryHistory)
	g.GET("/:id/slip.pdf", view, s.DeliverySlip)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/login", s.Login)
	admin.POST("/logout", s.Logout)

	admin.Use(s.SessionRequired())
	admin.GET("/me", s.Me)

	catalogView := s.authorize(authorization.ObjectCatalog, authorization.ActionView)
	catalogManage := s.authorize(authorization.ObjectCatalog, authorization.ActionManage)

	// -------- Taxonomy --------
	admin.GET("/categories", catalogView, s.ListCategories)
	admin.POST("/categories", catalogManage, s.CreateCategory)
	admin.GET("/categories/:id", catalogView, s.GetCategory)
	admin.PATCH("/categories/:id", catalogManage, s.UpdateCategory)
	admin.DELETE("/categories/:id", catalogManage, s.DeleteCategory)

	admin.GET("/subcategories", catalogView, s.ListSubCategories)
	admin.POST("/subcategories", catalogManage, s.CreateSubCategory)
	admin.GET("/subcategories/:id", catalogView, s.GetSubCategory)
	admin.PATCH("/subcategories/:id", catalogManage, s.UpdateSubCategory)
	admin.DELETE("/subcategories/:id", catalogManage, s.DeleteSubCategory)

	admin.GET("/types", catalogView, s.ListTypes)
	admin.POST("/types", catalogManage, s.CreateType)
	admin.PATCH("/types/:id", catalogManage, s.UpdateType)
	admin.DELETE("/types/:id", catalogManage, s.DeleteType)

	admin.GET("/brands", catalogView, s.ListBrands)
	admin.POST("/brands", catalogManage, s.CreateBrand)
	admin.PATCH("/brands/:id", catalogManage, s.UpdateBrand)
	admin.DELETE("/brands/:id", catalogManage, s.DeleteBrand)

	admin.GET("/collections", catalogView, s.ListCollections)
	admin.POST("/collections", catalogManage, s.CreateCollection)
	admin.PATCH("/collections/:id", catalogManage, s.UpdateCollection)
	admin.DELETE("/collections/:id", catalogManage, s.DeleteCollection)

	// -------- Products --------
	admin.GET("/products", catalogView, s.ListProducts)
	admin.POST("/products", catalogManage, s.CreateProduct)
	admin.GET("/products/:id", catalogView, s.GetProductByID)
	admin.PATCH("/products/:id", catalogManage, s.UpdateProduct)
	admin.DELETE("/products/:id", catalogManage, s.DeleteProduct)
	admin.POST("/products/:id/images", catalogManage, s.AddProductImage)
	admin.PATCH("/products/:id/images/:imageId", catalogManage, s.UpdateProductImage)
	admin.DELETE("/products/:id/images/:imageId", catalogManage, s.DeleteProductImage)
	admin.PUT("/products/:id/specifications", catalogManage, s.ReplaceProductSpecifications)
	admin.POST("/products/:id/specifications/from-characteristics", catalogManage, s.ProductSpecificationsFromCharacteristics)

	// -------- Orders & customers --------
	admin.GET("/orders", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.ListOrders)
	admin.GET("/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.GetOrder)
	admin.POST("/orders/:id/confirm", s.authorize(authorization.ObjectOrder, authorization.ActionManage), s.ConfirmOrder)
	admin.POST("/orders/:id/cancel", s.authorize(authorization.ObjectOrder, authorization.ActionManage), s.CancelOrder)
	admin.PATCH("/orders/:id/status", s.authorize(authorization.ObjectOrder, authorization.ActionManage), s.UpdateOrderStatus)

	admin.GET("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.ListCustomers)
	admin.GET("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.GetCustomerByID)

	// -------- Deliveries --------
	s.registerDeliveryRoutes(admin.Group("/deliveries"), "")

	// -------- Hero slides --------
	heroView := s.authorize(authorization.ObjectHeroSlide, authorization.ActionView)
	heroManage := s.authorize(authorization.ObjectHeroSlide, authorization.ActionManage)
	admin.GET("/hero-slides", heroView, s.ListHeroSlides)
	admin.POST("/hero-slides", heroManage, s.CreateHeroSlide)
	admin.GET("/hero-slides/:id", heroView, s.GetHeroSlide)
	admin.PATCH("/hero-slides/:id", heroManage, s.UpdateHeroSlide)
	admin.DELETE("/hero-slides/:id", heroManage, s.DeleteHeroSlide)

	// -------- Imports --------
	admin.POST("/imports", s.authorize(authorization.ObjectImport, authorization.ActionManage), s.ImportCatalog)
	admin.GET("/imports", s.authorize(authorization.ObjectImport, authorization.ActionView), s.ListImportRuns)
	admin.GET("/imports/:id", s.authorize(authorization.ObjectImport, authorization.ActionView), s.GetImportRun)

	// -------- Media --------
	admin.POST("/media", s.authorize(authorization.ObjectMedia, authorization.ActionManage), s.UploadMedia)

	// -------- Users --------
	userView := s.authorize(authorization.ObjectUser, authorization.ActionView)
	userManage := s.authorize(authorization.ObjectUser, authorization.ActionManage)
	admin.GET("/users", userView, s.ListUsers)
	admin.POST("/users", userManage, s.CreateUser)
	admin.GET("/users/:id", userView, s.GetUser)
	admin.PATCH("/users/:id", userManage, s.UpdateUser)
	admin.DELETE("/users/:id", userManage, s.DeleteUser)
}
