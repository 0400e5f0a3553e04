package logsetup

import (
	"errors"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/cmstar/go-logx"
	"github.com/cmstar/go-webhookauth"
	"github.com/cmstar/go-webhookauth/webhooktest"
	"github.com/stretchr/testify/assert"
)

func TestIP(t *testing.T) {
	t.Run("conn", func(t *testing.T) {
		state := &webhookauth.ValidationState{}
		state.Request.Conn.RemoteIP = net.ParseIP("::1")
		IP.Setup(state)
		assert.Equal(t, []any{"IP", "::1"}, state.LogMessage)
	})

	t.Run("raw", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		state := &webhookauth.ValidationState{RawRequest: r}
		IP.Setup(state)
		assert.Equal(t, []any{"IP", "10.0.0.1"}, state.LogMessage)
	})

	t.Run("unparsable", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "pipe"
		state := &webhookauth.ValidationState{RawRequest: r}
		IP.Setup(state)
		assert.Equal(t, []any{"IP", "pipe"}, state.LogMessage)
	})

	t.Run("none", func(t *testing.T) {
		state := &webhookauth.ValidationState{}
		IP.Setup(state)
		assert.Equal(t, []any{"IP", ""}, state.LogMessage)
	})
}

func TestURL(t *testing.T) {
	state := &webhookauth.ValidationState{CanonicalURL: "https://example.com/sms"}
	URL.Setup(state)
	assert.Equal(t, []any{"URL", "https://example.com/sms"}, state.LogMessage)

	r := httptest.NewRequest("GET", "/sms?a=1", nil)
	state = &webhookauth.ValidationState{RawRequest: r}
	URL.Setup(state)
	assert.Equal(t, []any{"URL", "/sms?a=1"}, state.LogMessage)
}

func TestVerdict(t *testing.T) {
	state := &webhookauth.ValidationState{Valid: true, Gate: webhookauth.GateLocal}
	Verdict.Setup(state)
	assert.Equal(t, logx.Level(0), state.LogLevel)
	assert.Equal(t, []any{"Valid", true, "Gate", "local"}, state.LogMessage)

	state = &webhookauth.ValidationState{Gate: webhookauth.GateSignature}
	Verdict.Setup(state)
	assert.Equal(t, logx.LevelToString(logx.LevelWarn), logx.LevelToString(state.LogLevel))
	assert.Equal(t, []any{"Valid", false, "Gate", "signature"}, state.LogMessage)
}

func TestError(t *testing.T) {
	state := &webhookauth.ValidationState{}
	Error.Setup(state)
	assert.Empty(t, state.LogMessage)

	state = &webhookauth.ValidationState{Error: webhookauth.CreateRequestError(nil, "body exceeds 4 bytes")}
	Error.Setup(state)
	assert.Equal(t, logx.LevelToString(logx.LevelWarn), logx.LevelToString(state.LogLevel))
	assert.Len(t, state.LogMessage, 4)
	assert.Equal(t, []any{"ErrorType", "RequestError", "Error"}, state.LogMessage[:3])
	assert.Regexp(t, `^body exceeds 4 bytes`, state.LogMessage[3])

	state = &webhookauth.ValidationState{Error: errors.New("e")}
	Error.Setup(state)
	assert.Equal(t, logx.LevelToString(logx.LevelError), logx.LevelToString(state.LogLevel))
}

func TestNewDefaultPipeline(t *testing.T) {
	rec := webhooktest.NewLogRecorder()
	r := httptest.NewRequest("POST", "/sms", nil)

	state := &webhookauth.ValidationState{
		RawRequest:   r,
		CanonicalURL: "https://example.com/sms",
		Gate:         webhookauth.GateSignature,
		Valid:        true,
		Logger:       rec,
	}
	NewDefaultPipeline().Log(state)

	assert.Equal(t,
		"level=INFO message=webhook validation Gate=signature IP=192.0.2.1 URL=https://example.com/sms Valid=true\n",
		rec.String())

	// 没有 Logger 时不输出。
	state = &webhookauth.ValidationState{RawRequest: r}
	NewDefaultPipeline().Log(state)
	assert.Empty(t, state.LogMessage)
}

func TestLogSetupPipeline_custom(t *testing.T) {
	rec := webhooktest.NewLogRecorder()
	p := webhookauth.NewLogSetupPipeline(
		Verdict,
		webhookauth.ToLogSetup(func(state *webhookauth.ValidationState) {
			state.LogLevel = logx.LevelDebug
			state.LogMessage = append(state.LogMessage, "Extra", 1)
		}),
	)

	p.Log(&webhookauth.ValidationState{Logger: rec, Valid: true})
	assert.Equal(t, "level=DEBUG message=webhook validation Extra=1 Gate= Valid=true\n", rec.String())
}
