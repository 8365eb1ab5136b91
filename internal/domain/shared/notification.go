package shared

import "errors"

// NotificationKind is the visual style of a toast shown by the front end
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationFailure NotificationKind = "failure"
)

// GenericFailureMessage is shown when the backend could not be reached or
// answered with something that is not a status envelope.
const GenericFailureMessage = "Something went wrong. Please try again."

// Notification is the toast payload attached to every portal response.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// Success builds a success notification
func Success(message string) *Notification {
	return &Notification{Kind: NotificationSuccess, Message: message}
}

// Failure builds a failure notification
func Failure(message string) *Notification {
	if message == "" {
		message = GenericFailureMessage
	}
	return &Notification{Kind: NotificationFailure, Message: message}
}

// UserMessage is implemented by errors whose message is safe to show to the
// end user as-is, such as backend business errors.
type UserMessage interface {
	UserMessage() string
}

// NotificationFromError maps an error to a failure toast. Business errors and
// domain errors keep their message; anything else gets the generic text.
func NotificationFromError(err error) *Notification {
	if err == nil {
		return nil
	}
	var um UserMessage
	if errors.As(err, &um) {
		return Failure(um.UserMessage())
	}
	var de *DomainError
	if errors.As(err, &de) {
		return Failure(de.Message)
	}
	return Failure(GenericFailureMessage)
}
