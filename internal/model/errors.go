package model

import "errors"

var (
	ErrMissingSheet   = errors.New("missing sheet")
	ErrHeaderNotFound = errors.New("header row not found")
	ErrMalformedCell  = errors.New("malformed cell")
	ErrUnexpected     = errors.New("unexpected failure")
	// ErrUnpairedRule means the alert/pass expansion lost a partner.
	ErrUnpairedRule = errors.New("alert/pass pairing violated")
)
