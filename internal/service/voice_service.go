package service

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/events"
	pktNats "atlas-be/pkg/nats"
	"atlas-be/pkg/voice"

	"github.com/google/uuid"
)

// maxCallDuration caps a live voice call per tier.
var maxCallDuration = map[entity.Tier]time.Duration{
	entity.TierFree:   5 * time.Minute,
	entity.TierCore:   30 * time.Minute,
	entity.TierStudio: 60 * time.Minute,
}

// callIdleTimeout ends a call that stops sending heartbeats, so
// abandoned sessions don't hold their slot until the max duration.
const callIdleTimeout = 2 * time.Minute

type IVoiceService interface {
	Transcribe(ctx context.Context, profileId uuid.UUID, audio []byte, mimeType string) (*dto.TranscribeResponse, error)
	Speak(ctx context.Context, req *dto.SpeakRequest) ([]byte, string, error)

	// VoiceChat runs one full utterance: transcribe, answer, synthesize.
	VoiceChat(ctx context.Context, profileId uuid.UUID, conversationId uuid.UUID, audio []byte, mimeType string) (*dto.VoiceChatResponse, error)

	StartCall(ctx context.Context, profileId uuid.UUID) (*dto.StartCallResponse, error)
	Heartbeat(ctx context.Context, profileId uuid.UUID, callId string) error
	EndCall(ctx context.Context, profileId uuid.UUID, callId string) error
}

type voiceService struct {
	uowFactory     unitofwork.RepositoryFactory
	deepgram       *voice.DeepgramClient
	chatService    IChatService
	tracker        *voice.CallTracker
	idleTimers     *voice.TimeoutSet
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	sttModel       string
	ttsVoice       string
}

func NewVoiceService(
	uowFactory unitofwork.RepositoryFactory,
	deepgram *voice.DeepgramClient,
	chatService IChatService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	sttModel, ttsVoice string,
) IVoiceService {
	s := &voiceService{
		uowFactory:     uowFactory,
		deepgram:       deepgram,
		chatService:    chatService,
		eventPublisher: eventPublisher,
		logger:         log,
		sttModel:       sttModel,
		ttsVoice:       ttsVoice,
	}
	s.tracker = voice.NewCallTracker(s.onCallEnded)
	s.idleTimers = voice.NewTimeoutSet()
	return s
}

func (s *voiceService) Transcribe(ctx context.Context, profileId uuid.UUID, audio []byte, mimeType string) (*dto.TranscribeResponse, error) {
	var transcript *voice.Transcript

	retryErr := voice.Retry(ctx, func(attempt int) error {
		result, err := s.deepgram.Transcribe(ctx, audio, mimeType, s.sttModel)
		if err != nil {
			s.logger.Warn("VoiceService", "Transcription attempt failed", map[string]interface{}{
				"profile_id": profileId.String(),
				"attempt":    attempt,
				"error":      err.Error(),
			})
			return err
		}
		if result.Text == "" && result.Confidence == 0 {
			return voice.ErrZeroConfidence
		}
		transcript = result
		return nil
	})

	if retryErr != nil {
		s.recordRetryFailure(ctx, profileId, retryErr)
		return nil, retryErr
	}

	return &dto.TranscribeResponse{
		Text:       transcript.Text,
		Confidence: transcript.Confidence,
	}, nil
}

func (s *voiceService) Speak(ctx context.Context, req *dto.SpeakRequest) ([]byte, string, error) {
	return s.deepgram.Speak(ctx, req.Text, s.ttsVoice)
}

func (s *voiceService) VoiceChat(ctx context.Context, profileId uuid.UUID, conversationId uuid.UUID, audio []byte, mimeType string) (*dto.VoiceChatResponse, error) {
	transcript, err := s.Transcribe(ctx, profileId, audio, mimeType)
	if err != nil {
		return nil, err
	}
	if transcript.Text == "" {
		return nil, errors.New("could not hear anything in the audio")
	}

	chatRes, err := s.chatService.SendChat(ctx, profileId, &dto.SendChatRequest{
		ConversationId: conversationId,
		Content:        transcript.Text,
	})
	if err != nil {
		return nil, err
	}
	if chatRes.Reply == nil {
		return nil, errors.New("assistant produced no reply")
	}

	audioOut, mime, err := s.deepgram.Speak(ctx, chatRes.Reply.Content, s.ttsVoice)
	if err != nil {
		// The reply text still has value even when synthesis fails.
		s.logger.Warn("VoiceService", "TTS failed, returning text only", map[string]interface{}{
			"profile_id": profileId.String(),
			"error":      err.Error(),
		})
		return &dto.VoiceChatResponse{
			ConversationId: conversationId,
			Prompt:         transcript.Text,
			Text:           chatRes.Reply.Content,
		}, nil
	}

	return &dto.VoiceChatResponse{
		ConversationId: conversationId,
		Prompt:         transcript.Text,
		Text:           chatRes.Reply.Content,
		Mime:           mime,
		AudioBase64:    base64.StdEncoding.EncodeToString(audioOut),
	}, nil
}

func (s *voiceService) StartCall(ctx context.Context, profileId uuid.UUID) (*dto.StartCallResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: profileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile not found")
	}

	maxDuration, ok := maxCallDuration[profile.SubscriptionTier]
	if !ok {
		maxDuration = maxCallDuration[entity.TierFree]
	}

	callId := uuid.New().String()
	s.tracker.Start(callId, profileId.String(), maxDuration)
	s.armIdleTimer(callId)

	s.logger.Info("VoiceService", "Call started", map[string]interface{}{
		"call_id":    callId,
		"profile_id": profileId.String(),
		"max_sec":    int(maxDuration.Seconds()),
	})

	return &dto.StartCallResponse{
		CallId:             callId,
		MaxDurationSeconds: int(maxDuration.Seconds()),
	}, nil
}

// Heartbeat keeps an active call alive. Clients send one every 30s or so.
func (s *voiceService) Heartbeat(ctx context.Context, profileId uuid.UUID, callId string) error {
	active, ok := s.tracker.Active(profileId.String())
	if !ok || active.Id != callId {
		return errors.New("call not found")
	}
	s.armIdleTimer(callId)
	return nil
}

func (s *voiceService) EndCall(ctx context.Context, profileId uuid.UUID, callId string) error {
	active, ok := s.tracker.Active(profileId.String())
	if !ok || active.Id != callId {
		return errors.New("call not found")
	}
	s.tracker.End(callId, voice.EndReasonUser)
	return nil
}

func (s *voiceService) armIdleTimer(callId string) {
	s.idleTimers.Set(callId, callIdleTimeout, func() {
		s.tracker.End(callId, voice.EndReasonTimeout)
	})
}

func (s *voiceService) onCallEnded(call *voice.Call, reason voice.EndReason) {
	s.idleTimers.Clear(call.Id)
	s.logger.Info("VoiceService", "Call ended", map[string]interface{}{
		"call_id":    call.Id,
		"profile_id": call.ProfileId,
		"reason":     string(reason),
		"duration":   call.Duration().String(),
	})

	if s.eventPublisher == nil {
		return
	}
	event := events.NewCallEnded(call.ProfileId, call.Id, string(reason), call.Duration().Seconds())
	if err := s.eventPublisher.Publish(context.Background(), event); err != nil {
		s.logger.Warn("VoiceService", "Failed to publish call event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *voiceService) recordRetryFailure(ctx context.Context, profileId uuid.UUID, cause error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	attempts := voice.MaxAttempts
	if !voice.Retryable(cause) {
		attempts = 1
	}

	retryLog := &entity.RetryLog{
		Id:         uuid.New(),
		Resource:   "stt_upload",
		ResourceId: profileId.String(),
		Attempts:   attempts,
		LastError:  cause.Error(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uow.AuditRepository().CreateRetryLog(ctx, retryLog); err != nil {
		s.logger.Error("VoiceService", "Failed to write retry log", map[string]interface{}{"error": err.Error()})
	}
}
