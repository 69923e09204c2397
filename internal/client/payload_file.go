package client

import (
	"encoding/json"
	"os"

	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/service"
	"github.com/rmura/formsync/models"
)

type filePayloadSource struct {
	path string
	log  *logger.Logger
}

// NewFilePayloadSource returns a payload source that re-reads and parses the
// JSON document at path on every save. A missing or unparsable file reads as
// no payload, which the engine reports as "payload_missing".
func NewFilePayloadSource(path string, log *logger.Logger) service.PayloadSource {
	return &filePayloadSource{path: path, log: log}
}

// CurrentPayload implements [service.PayloadSource].
func (s *filePayloadSource) CurrentPayload() models.Payload {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("read payload file")
		return nil
	}

	var payload models.Payload
	if err = json.Unmarshal(data, &payload); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("parse payload file")
		return nil
	}

	return payload
}
