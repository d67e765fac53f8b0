package ports

// Template keys understood by the email collaborator. Rendering and delivery
// are owned by the notifier implementation.
const (
	TemplateActivation      = "account.activation"
	TemplateActivated       = "account.activated"
	TemplateAccountLocked   = "account.locked"
	TemplatePasswordReset   = "password.reset"
	TemplatePasswordChanged = "password.changed"
)

// Notifier dispatches an owner-facing notification. Calls are fire-and-forget:
// they must never block the caller and delivery failures are logged, never
// surfaced. Callers invoke Notify only after the triggering state change has
// been persisted.
type Notifier interface {
	Notify(templateKey, recipient string, args ...string)
}
