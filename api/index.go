package handler

import (
	"net/http"
	"sync"

	config "monopod-agents/configs"
	"monopod-agents/pkg/handlers"
	logx "monopod-agents/pkg/logger"
	"monopod-agents/pkg/services"

	"github.com/gin-gonic/gin"
)

var (
	app     http.Handler
	initErr error
	once    sync.Once
)

// newApp は設定からAGENT_KINDに応じたGinアプリケーションを組み立てます。
func newApp(cfg *config.Config) (*gin.Engine, error) {
	prompts, err := config.LoadAgentPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}
	client, err := services.NewCompletionClient(cfg)
	if err != nil {
		return nil, err
	}
	return handlers.NewRouter(cfg, prompts, client)
}

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() (http.Handler, error) {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}
		logx.Init(logx.LoggerOpts{Environment: cfg.Environment})
		if cfg.Environment.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		engine, err := newApp(cfg)
		if err != nil {
			initErr = err
			return
		}
		app = engine
		logx.Info().Str("agent_kind", cfg.AgentKind).Msg("serverless application initialized")
	})
	return app, initErr
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := setupApp()
	if err != nil {
		logx.Error().Err(err).Msg("failed to initialize application")
		writeInitError(w)
		return
	}
	h.ServeHTTP(w, r)
}

// writeInitError はハンドラーと同じ {"detail": ...} 形式で初期化失敗を返します。
func writeInitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"detail":"service initialization failed"}`))
}
