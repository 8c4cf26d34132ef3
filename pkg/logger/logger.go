package logx

import (
	"io"
	"os"

	config "monopod-agents/configs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerOpts ロガーの初期化オプション
type LoggerOpts struct {
	Environment config.Environment
	// Output が nil の場合は標準出力に書き込みます。
	Output io.Writer
}

var DefaultLoggerOpts = &LoggerOpts{
	Environment: config.Development,
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

// Init はグローバルロガーを環境に合わせて設定します。
// 本番ではJSON形式・INFOレベル、それ以外ではコンソール形式・DEBUGレベルで出力します。
func Init(opts ...LoggerOpts) {
	o := safe(opts...)
	out := o.Output
	if out == nil {
		out = os.Stdout
	}

	if o.Environment.IsProduction() {
		log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
