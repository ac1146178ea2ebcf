package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"roleplay/config"
	"roleplay/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// VoiceService 语音识别与合成。所有失败都被吞掉：
// 识别失败返回空串，合成失败返回空字节，由调用方决定如何响应
type VoiceService struct {
	client *resty.Client
	store  ObjectStore
	cfg    config.VoiceConfig
}

type asrRequest struct {
	Audio struct {
		URL      string `json:"url"`
		Encoding string `json:"encoding"`
	} `json:"audio"`
	Request struct {
		Language        string `json:"language"`
		ProfanityFilter bool   `json:"profanity_filter"`
	} `json:"request"`
}

type asrResponse struct {
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
}

type ttsRequest struct {
	Audio struct {
		VoiceType  string  `json:"voice_type"`
		Encoding   string  `json:"encoding"`
		SpeedRatio float64 `json:"speed_ratio"`
	} `json:"audio"`
	Request struct {
		Text string `json:"text"`
	} `json:"request"`
}

type ttsResponse struct {
	Data string `json:"data"`
}

// NewVoiceService ASR/TTS 与对话模型共用 base_url 和 api_key
func NewVoiceService(llm config.LLMConfig, voice config.VoiceConfig, store ObjectStore) *VoiceService {
	client := resty.New().
		SetBaseURL(llm.BaseURL).
		SetAuthToken(llm.APIKey).
		SetHeader("Content-Type", "application/json")
	if timeout := llm.Timeout(); timeout > 0 {
		client.SetTimeout(timeout)
	} else {
		client.SetTimeout(60 * time.Second)
	}
	return &VoiceService{client: client, store: store, cfg: voice}
}

// TranscribeBytes 识别内存中的音频，filename 为空时生成 audio-{uuid}.webm
func (v *VoiceService) TranscribeBytes(ctx context.Context, data []byte, filename string) string {
	if filename == "" {
		filename = fmt.Sprintf("audio-%s.webm", uuid.NewString())
	}
	return v.transcribe(ctx, data, filename)
}

// TranscribeFile 识别本地文件，以文件名作为存储 key
func (v *VoiceService) TranscribeFile(ctx context.Context, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("读取音频文件失败")
		return ""
	}
	return v.transcribe(ctx, data, filepath.Base(path))
}

func (v *VoiceService) transcribe(ctx context.Context, data []byte, key string) string {
	url, err := v.store.Upload(ctx, key, data)
	metrics.ObserveVoice("upload", err == nil && url != "")
	if err != nil || url == "" {
		log.Warn().Err(err).Str("key", key).Msg("音频上传失败，无法识别")
		return ""
	}

	text, err := v.recognize(ctx, url)
	metrics.ObserveVoice("asr", err == nil)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("语音识别失败")
		return ""
	}
	return text
}

func (v *VoiceService) recognize(ctx context.Context, audioURL string) (string, error) {
	var body asrRequest
	body.Audio.URL = audioURL
	body.Audio.Encoding = v.cfg.ASREncoding
	body.Request.Language = v.cfg.ASRLanguage
	body.Request.ProfanityFilter = false

	var result asrResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/voice/asr")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("ASR 返回状态 %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Data.Text == "" {
		return "", errors.New("ASR 响应中没有识别文本")
	}
	return result.Data.Text, nil
}

// Synthesize 文本转语音，返回解码后的音频字节
func (v *VoiceService) Synthesize(ctx context.Context, text string) []byte {
	audio, err := v.synthesize(ctx, text)
	metrics.ObserveVoice("tts", err == nil)
	if err != nil {
		log.Warn().Err(err).Int("text_len", len(text)).Msg("语音合成失败")
		return nil
	}
	return audio
}

func (v *VoiceService) synthesize(ctx context.Context, text string) ([]byte, error) {
	var body ttsRequest
	body.Audio.VoiceType = v.cfg.TTSVoice
	body.Audio.Encoding = v.cfg.TTSEncoding
	body.Audio.SpeedRatio = v.cfg.TTSSpeed
	body.Request.Text = text

	var result ttsResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/voice/tts")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("TTS 返回状态 %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Data == "" {
		return nil, errors.New("TTS 响应中没有音频数据")
	}
	return base64.StdEncoding.DecodeString(result.Data)
}
