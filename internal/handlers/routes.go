package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/metrics"
	"github.com/localnerve/videohost/internal/middleware"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the handles every handler is built from
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Store    media.Store
	Uploader *services.VideoUploader
	Tokens   *services.TokenService
	Events   messaging.Publisher
	Log      logrus.FieldLogger
}

// BodySlack leaves room for the multipart envelope around a maximum size upload
const BodySlack = 1 << 20

// BodyLimit is the server body limit for an upload limit of maxBytes
func BodyLimit(maxBytes int64) int {
	return int(maxBytes) + BodySlack
}

// NewErrorHandler is the app ErrorHandler. An upload cut off by the server
// body limit gets the same BadRequest as any other oversize file.
func NewErrorHandler(d Deps) fiber.ErrorHandler {
	base := utils.NewErrorHandler(d.Log)
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if d.Uploader != nil && errors.As(err, &fe) && fe.Code == fiber.StatusRequestEntityTooLarge &&
			strings.HasSuffix(c.Path(), "/video/upload") {
			metrics.VideoUploads.WithLabelValues("rejected").Inc()
			err = types.FileTooLarge(d.Uploader.MaxBytes)
		}
		return base(c, err)
	}
}

// RegisterRoutes mounts the API on router, which is normally the /api group
func RegisterRoutes(router fiber.Router, d Deps) {
	if d.Events == nil {
		d.Events = messaging.NopPublisher{}
	}

	authUser := middleware.AuthUser(d.Tokens, d.DB)
	authAdmin := middleware.AuthAdmin(d.Tokens, d.DB)

	videos := &VideoHandler{DB: d.DB, Uploader: d.Uploader, Store: d.Store, Events: d.Events, Log: d.Log}
	comments := &CommentHandler{DB: d.DB, Log: d.Log}
	tags := &TagHandler{DB: d.DB, Log: d.Log}
	subs := &SubscriptionHandler{DB: d.DB, Log: d.Log}
	users := &UserHandler{DB: d.DB, Tokens: d.Tokens, Store: d.Store, Events: d.Events, Log: d.Log}
	admin := &AdminHandler{Admin: &services.Admin{DB: d.DB, Store: d.Store}, Events: d.Events, Log: d.Log}

	video := router.Group("/video")
	video.Get("/get", videos.GetVideo)
	video.Get("/get-many", videos.GetVideos)
	video.Post("/increment", videos.Increment)
	video.Post("/upload", authUser, videos.Upload)
	video.Put("/update", authUser, videos.Update)
	video.Delete("/delete", authUser, videos.Delete)
	video.Delete("/delete-user-videos", authUser, videos.DeleteUserVideos)

	comment := router.Group("/comment")
	comment.Get("/get", comments.GetComments)
	comment.Post("/add", authUser, comments.AddComment)
	comment.Put("/update", authUser, comments.UpdateComment)
	comment.Delete("/delete", authUser, comments.DeleteComment)

	tag := router.Group("/tag")
	tag.Get("/get", tags.GetTags)
	tag.Post("/add", authUser, tags.AddTag)
	tag.Post("/attach", authUser, tags.AttachTags)

	sub := router.Group("/subscription", authUser)
	sub.Get("/get", subs.GetSubscription)
	sub.Get("/list", subs.ListSubscriptions)
	sub.Post("/add", subs.AddSubscription)
	sub.Delete("/delete", subs.DeleteSubscription)

	user := router.Group("/user")
	user.Get("/get", users.GetUser)
	user.Post("/register", users.Register)
	user.Post("/login", users.Login)
	user.Post("/logout", authUser, users.Logout)
	user.Get("/me", authUser, users.Me)
	user.Put("/update", authUser, users.UpdateMe)
	user.Delete("/delete", authUser, users.DeleteMe)

	adm := router.Group("/admin", authAdmin)
	adm.Get("/get-entity", admin.GetEntity)
	adm.Get("/get-entities", admin.GetEntities)
	adm.Delete("/delete-entity", admin.DeleteEntity)
	adm.Put("/update-tag", admin.UpdateTag)
	adm.Put("/update-video", admin.UpdateVideo)
	adm.Put("/update-comment", admin.UpdateComment)
	adm.Put("/update-user", admin.UpdateUser)
	adm.Put("/update-subscription", admin.UpdateSubscription)
}

// RegisterHealth mounts GET /health on the app root
func RegisterHealth(app fiber.Router, d Deps) {
	h := &HealthHandler{Cfg: d.Cfg, DB: d.DB, Log: d.Log}
	app.Get("/health", h.Health)
}
