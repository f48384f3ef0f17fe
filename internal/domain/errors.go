package domain

import "errors"

var (
	// ErrAuthFailure is returned when the identity gateway rejects credentials
	// or the user abandons an OAuth flow. Never fatal.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrDataUnavailable indicates a read needed to render a view failed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNoCachedIdentity is returned when the locally cached identity blob is
	// missing or cannot be decrypted; callers must treat it as "signed out".
	ErrNoCachedIdentity = errors.New("no cached identity")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates no users row exists for the given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAnswering is returned when a session transition is attempted
	// outside the Answering state.
	ErrNotAnswering = errors.New("session is not accepting answers")
	// ErrNoSelection is returned when Advance or Complete run before the
	// current question has an option recorded.
	ErrNoSelection = errors.New("current question has no selected option")
)
