package log

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const callerSkip = 8

var l *logger

func init() {
	var err error

	l, err = newLogger(zapcore.InfoLevel, "console", "") // "json" or "console"
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(l.Logger)

	if _, err := zap.RedirectStdLogAt(l.Logger, zapcore.InfoLevel); err != nil {
		panic(err)
	}
}

type logger struct {
	logLevel    zapcore.Level
	logEncoding string

	file *os.File

	*zap.Logger
}

// Setup replaces the default logger. An empty filePath keeps stdout/stderr only,
// otherwise every entry is also appended to the file.
func Setup(level, encoding, filePath string) error {
	var logLevel zapcore.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", level, err)
	}

	newL, err := newLogger(logLevel, encoding, filePath)
	if err != nil {
		return err
	}

	old := l
	l = newL

	zap.ReplaceGlobals(l.Logger)

	if old != nil && old.file != nil {
		_ = old.file.Close()
	}

	return nil
}

func newLogger(logLevel zapcore.Level, encoding, filePath string) (*logger, error) {
	encoder, err := getEncoder(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to parse encoder: %w", err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= logLevel && level < zapcore.ErrorLevel
			}),
		),
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= zapcore.ErrorLevel
			}),
		),
	}

	var file *os.File
	if filePath != "" {
		file, err = os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		cores = append(cores, zapcore.NewCore(
			encoder.Clone(),
			zapcore.Lock(file),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= logLevel
			}),
		))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...)).WithOptions(zap.AddCaller())

	return &logger{
		logLevel:    logLevel,
		logEncoding: encoding,
		file:        file,
		Logger:      zapLogger,
	}, nil
}

func getEncoder(encoding string) (zapcore.Encoder, error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "message",

		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.ISO8601TimeEncoder,

		CallerKey:      "caller",
		EncodeCaller:   customEncodeCaller,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	switch encoding {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("failed to find encoder: %q", encoding)
	}
}

func Debug(msg string, fields ...zap.Field) { l.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { l.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { l.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { l.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { l.Fatal(msg, fields...) }
func Panic(msg string, fields ...zap.Field) { l.Panic(msg, fields...) }

// Logger exposes the underlying zap logger for libraries that take one.
func Logger() *zap.Logger { return l.Logger }

func Sync() error {
	return l.Sync()
}

func customEncodeCaller(_ zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	file, _, line := findCaller()
	enc.AppendString(file + ":" + strconv.Itoa(line))
}

func findCaller() (string, string, int) {
	var (
		pc       uintptr
		file     string
		function string
		line     int
	)

	pc, file, line = getCaller(callerSkip)

	if pc != 0 {
		frames := runtime.CallersFrames([]uintptr{pc})
		frame, _ := frames.Next()
		function = frame.Function
	}

	return file, function, line
}

func getCaller(skip int) (uintptr, string, int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return 0, "", 0
	}

	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				file = file[i+1:]
				break
			}
		}
	}

	return pc, file, line
}
