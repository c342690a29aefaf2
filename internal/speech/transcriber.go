package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// Callbacks receive transcription results as they arrive. Interim may
// fire any number of times; Final fires at most once per session and
// always after every interim for that session.
type Callbacks struct {
	Interim func(text string)
	Final   func(text string)
}

// Transcriber streams captured audio to the cloud speech API and
// delivers incremental transcripts.
type Transcriber struct {
	apiKey string
	logger *slog.Logger
}

// NewTranscriber returns a transcriber using the given API credential.
func NewTranscriber(apiKey string, logger *slog.Logger) *Transcriber {
	return &Transcriber{apiKey: apiKey, logger: logger}
}

// Stream consumes audio chunks until the channel is closed, forwarding
// them to the streaming recognition API and delivering results through
// the callbacks. Network and API failures are returned, not fatal: the
// caller keeps whatever partial transcript already arrived and leaves
// the text editable for manual entry.
func (t *Transcriber) Stream(ctx context.Context, chunks <-chan []byte, cb Callbacks) error {
	client, err := speech.NewClient(ctx, option.WithAPIKey(t.apiKey))
	if err != nil {
		return fmt.Errorf("failed to create speech client: %v", err)
	}
	defer client.Close()

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		return fmt.Errorf("failed to open recognition stream: %v", err)
	}

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: SampleRate,
					LanguageCode:    "en-US",
				},
				InterimResults: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send recognition config: %v", err)
	}

	// Feed audio on a separate goroutine so slow network responses
	// never block the capture side.
	sendDone := make(chan struct{})
	go func() {
		defer close(sendDone)
		for chunk := range chunks {
			req := &speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: chunk,
				},
			}
			if err := stream.Send(req); err != nil {
				if err != io.EOF {
					t.logger.Warn("failed to send audio chunk", "error", err)
				}
				return
			}
		}
		if err := stream.CloseSend(); err != nil {
			t.logger.Warn("failed to close audio stream", "error", err)
		}
	}()

	var final string
	finalSeen := false
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			<-sendDone
			if finalSeen && cb.Final != nil {
				cb.Final(final)
			}
			return fmt.Errorf("recognition stream failed: %v", err)
		}
		for _, result := range resp.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			text := result.Alternatives[0].Transcript
			if result.IsFinal {
				final = text
				finalSeen = true
			} else if cb.Interim != nil {
				cb.Interim(text)
			}
		}
	}
	<-sendDone

	if finalSeen && cb.Final != nil {
		cb.Final(final)
	}
	return nil
}
