package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	dbadapter "myforum/internal/adapters/database"
	"myforum/internal/adapters/httpapi"
	"myforum/internal/adapters/memory"
	redisadapter "myforum/internal/adapters/redis"
	"myforum/internal/adapters/storage"
	"myforum/internal/config"
	postapp "myforum/internal/core/post/service"
	statsapp "myforum/internal/core/stats/service"
	userapp "myforum/internal/core/user/service"
	feedPort "myforum/internal/ports/feed"
	postPort "myforum/internal/ports/post"
	userPort "myforum/internal/ports/user"
	"myforum/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// app آداپترهای خروجی که بین دستورات مشترک‌اند
type app struct {
	users     userPort.UserRepository
	posts     postPort.PostRepository
	comments  postPort.CommentRepository
	likes     postPort.LikeRepository
	feedIndex feedPort.FeedIndex // nil وقتی Redis تنظیم نشده
}

func openApp(ctx context.Context, s *config.Settings) (*app, error) {
	a := &app{}

	if s.DBDriver == "memory" {
		config.Logger.Warn("Using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		a.users, a.posts, a.comments, a.likes = store.Users(), store.Posts(), store.Comments(), store.Likes()
	} else {
		// اتصال به دیتابیس و اجرای مایگریشن‌ها
		db, err := config.InitDB(s)
		if err != nil {
			return nil, err
		}
		if err := config.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		config.Logger.Info("✅ Database migrations completed")

		a.users = dbadapter.NewUserRepositoryDatabase(db)
		a.posts = dbadapter.NewPostRepositoryDatabase(db)
		a.comments = dbadapter.NewCommentRepositoryDatabase(db)
		a.likes = dbadapter.NewLikeRepositoryDatabase(db)
	}

	// اتصال به Redis
	client, err := config.InitRedis(ctx, s)
	if err != nil {
		closeResources(config.Logger)
		return nil, err
	}
	if client != nil {
		a.feedIndex = redisadapter.NewFeedIndexRedis(client)
	}
	return a, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, settings)
	if err != nil {
		return err
	}
	// بستن منابع بعد از اتمام کار سرور
	defer closeResources(config.Logger)

	images := storage.NewImageStore(settings.UploadDir)

	opts := []postapp.Option{
		postapp.WithImages(images),
		postapp.WithDeletePolicy(postapp.PolicyByName(settings.DeletePolicy)),
		postapp.WithPageSize(settings.FeedPageSize),
	}
	if a.feedIndex != nil {
		indexer := workers.NewFeedIndexer(a.posts, a.feedIndex, settings.BatchSize, config.Logger)
		opts = append(opts, postapp.WithFeedIndex(a.feedIndex), postapp.WithIndexRebuilder(indexer))
	}

	userSvc := userapp.NewUserService(a.users, []byte(settings.JWTSecret), settings.JWTTTL, settings.AvatarBaseURL, config.Logger) // یوزکیس/سرویس
	postSvc := postapp.NewPostService(a.posts, a.comments, a.likes, a.users, config.Logger, opts...)                              // یوزکیس/سرویس
	statsSvc := statsapp.NewStatsService(a.likes, config.Logger)                                                                // یوزکیس/سرویس

	// ایندکس ناقص (مثلا پست‌های قبل از Redis) تا بازسازی بعدی نادیده گرفته می‌شود
	if _, err := postSvc.SyncFeedIndex(ctx, reindexOnStart); err != nil {
		config.Logger.Warn("Feed index sync failed, serving feed from database", zap.Error(err))
	}

	if settings.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpapi.SetupRoutes(userSvc, postSvc, statsSvc, httpapi.RouterOptions{ // تزریق یوزکیس به آداپتر ورودی
		Logger:         config.Logger,
		Images:         images,
		UploadDir:      settings.UploadDir,
		AllowedOrigins: settings.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.feedIndex != nil {
		g.Go(func() error {
			return workers.NewFeedSyncWorker(postSvc, settings.FeedSync, config.Logger).Run(gctx)
		})
	}
	g.Go(func() error {
		config.Logger.Info("App is running...", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		config.Logger.Info("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if settings.DBDriver == "memory" {
		return errors.New("migrate needs a database driver, DB_DRIVER is memory")
	}
	db, err := config.InitDB(settings)
	if err != nil {
		return err
	}
	defer closeResources(config.Logger)

	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	config.Logger.Info("✅ Database migrations completed")
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer closeResources(config.Logger)
	return rebuildIndex(cmd.Context(), a)
}

func rebuildIndex(ctx context.Context, a *app) error {
	if a.feedIndex == nil {
		return errors.New("feed index needs REDIS_ADDR")
	}
	indexer := workers.NewFeedIndexer(a.posts, a.feedIndex, settings.BatchSize, config.Logger)
	_, err := indexer.Rebuild(ctx)
	return err
}

// closeResources بستن اتصالات به Redis و دیتابیس
func closeResources(logger *zap.Logger) {
	if config.RedisClient != nil {
		if err := config.RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection:", zap.Error(err))
		}
		config.RedisClient = nil
	}

	if config.DB == nil {
		return
	}
	sqlDB, err := config.DB.DB() // گرفتن *sql.DB از *gorm.DB
	if err != nil {
		logger.Error("Error getting raw DB:", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection:", zap.Error(err))
	}
	config.DB = nil
}
