package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxAudioUpload = 25 << 20

// VoiceGateway 语音识别与合成
type VoiceGateway interface {
	TranscribeBytes(ctx context.Context, data []byte, filename string) string
	Synthesize(ctx context.Context, text string) []byte
}

// AudioHandler 语音处理器
type AudioHandler struct {
	voice VoiceGateway
}

// NewAudioHandler 创建语音处理器
func NewAudioHandler(voice VoiceGateway) *AudioHandler {
	return &AudioHandler{voice: voice}
}

// SpeakRequest 语音合成请求
type SpeakRequest struct {
	InputText string `json:"input_text" binding:"required,min=1,max=2000"`
}

// TranscribeResponse 识别结果，失败时为空串
type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe 语音转文字
// @Summary 语音识别
// @Description 上传音频文件（content-type 必须为 audio/*），识别失败时返回空串
// @Tags 语音
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "音频文件"
// @Success 200 {object} Response{data=TranscribeResponse}
// @Failure 400 {object} Response "非音频文件"
// @Router /api/v1/audio/transcribe [post]
func (h *AudioHandler) Transcribe(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传音频文件")
		return
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "audio/") {
		BadRequest(c, "Only audio files are allowed")
		return
	}
	if fh.Size > maxAudioUpload {
		Error(c, http.StatusRequestEntityTooLarge, "音频文件过大")
		return
	}

	f, err := fh.Open()
	if err != nil {
		InternalError(c, "读取音频失败")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		InternalError(c, "读取音频失败")
		return
	}

	transcript := h.voice.TranscribeBytes(c.Request.Context(), data, "")
	Success(c, TranscribeResponse{Transcript: transcript})
}

// Speak 文字转语音
// @Summary 语音合成
// @Tags 语音
// @Accept json
// @Produce audio/mpeg
// @Security BearerAuth
// @Param request body SpeakRequest true "待合成文本"
// @Success 200 {file} file "mp3 音频"
// @Failure 500 {object} Response "合成失败"
// @Router /api/v1/audio/speak [post]
func (h *AudioHandler) Speak(c *gin.Context) {
	var req SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	audio := h.voice.Synthesize(c.Request.Context(), req.InputText)
	if len(audio) == 0 {
		InternalError(c, "Failed to generate audio")
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}
