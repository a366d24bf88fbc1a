package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"room_chat_server/internal/config"
	"room_chat_server/internal/dao"
	"room_chat_server/internal/gateway/websocket"
	"room_chat_server/internal/handler"
	"room_chat_server/internal/https_server"
	"room_chat_server/internal/infrastructure/logger"
	"room_chat_server/internal/infrastructure/middleware"
	"room_chat_server/internal/infrastructure/monitoring"
	"room_chat_server/internal/infrastructure/mq"
	"room_chat_server/internal/infrastructure/worker"
	"room_chat_server/internal/service/chat"
	"room_chat_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// 1. 加载配置
	conf, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// 2. 初始化日志
	if err := logger.Init(conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	if conf.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.InitTrans("en"); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}

	// 3. 消息 ID
	ids, err := snowflake.NewGenerator(conf.SnowflakeConfig.MachineID)
	if err != nil {
		zap.L().Fatal("init snowflake failed", zap.Error(err))
	}

	// 4. 持久化：存储不可用时降级为纯内存模式
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := dao.OpenStore(ctx, conf)
	cancel()
	if err != nil {
		zap.L().Warn("persistence unavailable, running in-memory",
			zap.String("driver", conf.PersistenceConfig.Driver), zap.Error(err))
		store = nil
	} else if store == nil {
		zap.L().Info("no persistence driver configured, running in-memory")
	}

	var sinks []chat.MessageSink
	var kafkaSink *mq.KafkaSink
	if conf.KafkaConfig.Enabled {
		if kafkaSink, err = mq.NewKafkaSink(conf.KafkaConfig); err != nil {
			zap.L().Warn("kafka sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, kafkaSink)
		}
	}

	pool := worker.NewPool(conf.PersistenceConfig.Workers, conf.PersistenceConfig.QueueSize)
	var repo chat.MessageRepository
	if store != nil {
		repo = store
	}
	bridge := chat.NewPersistenceBridge(repo, pool, conf.PersistenceConfig.Timeout, sinks...)

	// 5. 聊天核心与传输层
	metrics := monitoring.New()
	hub := websocket.NewHub(metrics)
	coordinator := chat.NewCoordinator(chat.Options{
		DefaultRoom:  conf.ChatConfig.DefaultRoom,
		PresetRooms:  conf.ChatConfig.Rooms,
		HistoryLimit: conf.ChatConfig.HistoryLimit,
		PageSize:     conf.ChatConfig.PageSize,
		MaxFileSize:  conf.ChatConfig.MaxFileSize,
	}, hub, bridge, ids)
	gateway := websocket.NewGateway(hub, coordinator, websocket.GatewayOptions{
		AllowedOrigin: conf.MainConfig.ClientURL,
		// 文件以 base64 内联，留出编码膨胀和其他字段的余量
		ReadLimit: int64(conf.ChatConfig.MaxFileSize)*2 + 64*1024,
	})

	// 6. HTTP 服务
	limiter := middleware.NewRateLimiter(middleware.RateLimiterOptions{
		Window: conf.RateLimitConfig.Window,
		Max:    conf.RateLimitConfig.Max,
	})
	handlers := handler.NewHandlers(
		handler.NewChatHandler(coordinator),
		handler.NewSystemHandler(metrics, coordinator.PersistenceEnabled, conf.MainConfig.AppName, version, conf.MainConfig.Mode),
		gateway.Serve,
	)
	engine := https_server.Init(handlers, https_server.Options{
		ClientURL:  conf.MainConfig.ClientURL,
		PublicPath: conf.MainConfig.PublicPath,
		Secure: middleware.SecureOptions{
			SSLRedirect: conf.SecurityConfig.SSLRedirect,
			SSLHost:     conf.SecurityConfig.SSLHost,
			IsDev:       !conf.IsRelease(),
		},
		Metrics:     metrics,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("mode", conf.MainConfig.Mode),
			zap.String("defaultRoom", conf.ChatConfig.DefaultRoom),
			zap.Strings("rooms", conf.ChatConfig.Rooms),
			zap.Bool("persistence", coordinator.PersistenceEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 7. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zap.L().Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("http shutdown", zap.Error(err))
	}
	// 关闭 WebSocket 连接后再排空镜像队列，断开流程产生的写入也能落盘
	hub.Close()
	limiter.Close()
	waitForConnections(shutdownCtx, hub)
	pool.Close()

	if store != nil {
		if err := store.Close(shutdownCtx); err != nil {
			zap.L().Error("close store", zap.Error(err))
		}
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(shutdownCtx); err != nil {
			zap.L().Error("close kafka sink", zap.Error(err))
		}
	}
	zap.L().Info("server exited")
}

// waitForConnections 等待读循环完成断开流程，超时后直接返回
func waitForConnections(ctx context.Context, hub *websocket.Hub) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for hub.Count() > 0 {
		select {
		case <-ctx.Done():
			zap.L().Warn("connections still open at shutdown", zap.Int("count", hub.Count()))
			return
		case <-ticker.C:
		}
	}
}
