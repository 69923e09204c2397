package service

import "github.com/rmura/formsync/models"

// PayloadSource is the pull interface through which the engine obtains the
// current form document at save time. It is the engine's only link to the
// host application's form state.
type PayloadSource interface {
	// CurrentPayload returns the payload to save, or nil when no form state
	// exists yet.
	CurrentPayload() models.Payload
}

// PayloadSourceFunc adapts a plain function to [PayloadSource].
type PayloadSourceFunc func() models.Payload

func (f PayloadSourceFunc) CurrentPayload() models.Payload { return f() }
