package httpapi

import (
	"context"
	"net/http"

	"myforum/internal/adapters/httpapi/middleware"
	postEntity "myforum/internal/core/post"
	statsapp "myforum/internal/core/stats/service"
	"myforum/internal/core/user"
	postPort "myforum/internal/ports/post"
	userPort "myforum/internal/ports/user"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// UserUseCase: اینترفیسِ لازم برای کنترلر/روتر (Inbound Port)
type UserUseCase interface {
	LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, username, email, password, avatar string) (*userPort.UserDTO, error)
	ParseToken(token string) (*user.Viewer, error)
}

type PostUseCase interface {
	ListFeed(ctx context.Context, viewer *user.Viewer, page int) (*postPort.FeedPage, error)
	GetPostDetail(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) (*postPort.PostDetail, error)
	CreatePost(ctx context.Context, author *user.Viewer, title, text string, image *string) (*postEntity.Post, error)
	CreateComment(ctx context.Context, author *user.Viewer, postID uuid.UUID, text string) (*postEntity.Comment, error)
	LikePost(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) error
	DislikePost(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) error
	DeletePost(ctx context.Context, postID uuid.UUID, viewer *user.Viewer) error
}

type StatsUseCase interface {
	UserLikeStats(ctx context.Context, viewer *user.Viewer) (*postPort.LikeStats, error)
	WeeklyLikes(ctx context.Context) ([]statsapp.WeekCount, error)
}

type RouterOptions struct {
	Logger         *zap.Logger
	Images         ImageStore // nil disables multipart uploads
	UploadDir      string     // served under /images when set
	AllowedOrigins []string
}

// فقط روتینگ: UseCase از بیرون تزریق می‌شود
func SetupRoutes(
	userUC UserUseCase,
	postUC PostUseCase,
	statsUC StatsUseCase,
	opts RouterOptions,
) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.ZapLogger(logger), gin.Recovery(), middleware.CORS(opts.AllowedOrigins))

	uc := NewUserController(userUC, logger)
	pc := NewPostController(postUC, opts.Images, logger)
	sc := NewStatsController(statsUC, logger)

	auth := middleware.JWTAuthMiddleware(userUC)
	optionalAuth := middleware.OptionalJWTAuthMiddleware(userUC)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.UploadDir != "" {
		r.Static("/images", opts.UploadDir)
	}

	// مسیرهای ثبت‌نام و ورود بدون JWT Middleware
	r.POST("/register", uc.RegisterUser)
	r.POST("/login", uc.LoginUser)

	// فید و جزئیات پست برای کاربر ناشناس هم در دسترس است
	r.GET("/posts", optionalAuth, pc.ListFeed)
	r.GET("/posts/:id", optionalAuth, pc.GetPostDetail)

	posts := r.Group("/posts", auth)
	{
		posts.POST("", pc.CreatePost)
		posts.POST("/:id/comments", pc.CreateComment)
		posts.POST("/:id/like", pc.LikePost)
		posts.POST("/:id/dislike", pc.DislikePost)
		posts.DELETE("/:id", pc.DeletePost)
	}

	r.GET("/me/likes", auth, sc.UserLikeStats)
	r.GET("/stats/likes/weekly", sc.WeeklyLikes)
	return r
}
