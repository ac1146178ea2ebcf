package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVoice struct {
	transcript string
	audio      []byte
	received   []byte
}

func (f *fakeVoice) TranscribeBytes(_ context.Context, data []byte, _ string) string {
	f.received = data
	return f.transcript
}

func (f *fakeVoice) Synthesize(context.Context, string) []byte {
	return f.audio
}

func newAudioRouter(voice VoiceGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAudioHandler(voice)
	router := gin.New()
	router.POST("/audio/transcribe", h.Transcribe)
	router.POST("/audio/speak", h.Speak)
	return router
}

func uploadRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="voice.webm"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/audio/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAudioHandler_Transcribe(t *testing.T) {
	voice := &fakeVoice{transcript: "你好"}
	router := newAudioRouter(voice)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "audio/webm", []byte("webm-bytes")))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "你好", data["transcript"])
	assert.Equal(t, []byte("webm-bytes"), voice.received)

	// 识别失败返回空串
	voice.transcript = ""
	w = httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "audio/webm", []byte("x")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decodeResponse(t, w)["data"].(map[string]interface{})["transcript"])
}

func TestAudioHandler_Transcribe_RejectsNonAudio(t *testing.T) {
	router := newAudioRouter(&fakeVoice{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "image/png", []byte("png")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only audio files are allowed", decodeResponse(t, w)["message"])

	// 缺少文件
	req := httptest.NewRequest("POST", "/audio/transcribe", strings.NewReader(""))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAudioHandler_Speak(t *testing.T) {
	router := newAudioRouter(&fakeVoice{audio: []byte("ID3")})

	w := doJSON(router, "POST", "/audio/speak", map[string]string{"input_text": "你好"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("ID3"), w.Body.Bytes())

	w = doJSON(router, "POST", "/audio/speak", map[string]string{"input_text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(router, "POST", "/audio/speak", map[string]string{"input_text": strings.Repeat("a", 2001)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAudioHandler_Speak_Empty(t *testing.T) {
	router := newAudioRouter(&fakeVoice{})

	w := doJSON(router, "POST", "/audio/speak", map[string]string{"input_text": "你好"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate audio", decodeResponse(t, w)["message"])
}
