package log

import "context"

// Audit actions.
const (
	ActionLogin         = "admin.login"
	ActionLoginFailed   = "admin.login_failed"
	ActionKick          = "admin.kick"
	ActionDeleteMessage = "admin.delete_message"
	ActionModeratorDial = "admin.connect"
	ActionRejectedDial  = "admin.connect_rejected"
)

const (
	fieldAction   = "action"
	fieldTargetID = "target_id"
)

// Audit emits a structured audit entry for a moderation action.
func Audit(ctx context.Context, action, targetID, msg string) {
	Ctx(ctx).Info().
		Str(FieldLogType, LogTypeAudit).
		Str(fieldAction, action).
		Str(fieldTargetID, targetID).
		Msg(msg)
}
