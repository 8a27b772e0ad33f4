package domain

// Tier is the integer authorization level of a user, 0 lowest and 4 highest.
type Tier int

const (
	TierUser Tier = iota
	TierSysAdmin
	TierCommander
	TierDirectorate
	TierLana
)

// FinalizerTier is the lowest tier allowed to finalize or bypass review.
const FinalizerTier = TierDirectorate

// Action names a capability gated by tier.
type Action string

const (
	ActionSubmit       Action = "submit"
	ActionRecommend    Action = "recommend"
	ActionFinalize     Action = "finalize"
	ActionDirectUpdate Action = "direct_update"
	ActionViewAudit    Action = "view_audit"
	ActionManageTier   Action = "manage_tier"
	ActionExport       Action = "export"
)

var allActions = []Action{
	ActionSubmit,
	ActionRecommend,
	ActionFinalize,
	ActionDirectUpdate,
	ActionViewAudit,
	ActionManageTier,
	ActionExport,
}

var tierNames = map[Tier]string{
	TierUser:        "USER",
	TierSysAdmin:    "SYS_ADMIN",
	TierCommander:   "COMMANDER",
	TierDirectorate: "DIRECTORATE",
	TierLana:        "LANA",
}

// Valid reports whether t is within the 0-4 range.
func (t Tier) Valid() bool {
	return t >= TierUser && t <= TierLana
}

// Name returns the display label for the tier.
func (t Tier) Name() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsReviewer reports whether t may recommend pending changes.
func (t Tier) IsReviewer() bool {
	return t == TierSysAdmin || t == TierCommander
}

// IsFinalizer reports whether t may finalize changes and edit profiles directly.
func (t Tier) IsFinalizer() bool {
	return t.Valid() && t >= FinalizerTier
}

// Allows is the authorization gate: it maps a tier to the actions it may invoke.
func (t Tier) Allows(action Action) bool {
	if !t.Valid() {
		return false
	}
	switch action {
	case ActionSubmit:
		return true
	case ActionRecommend:
		return t.IsReviewer()
	case ActionFinalize, ActionDirectUpdate, ActionViewAudit, ActionManageTier:
		return t.IsFinalizer()
	case ActionExport:
		return t >= TierSysAdmin
	default:
		return false
	}
}

// Actions lists every action the tier is allowed to perform.
func (t Tier) Actions() []Action {
	out := make([]Action, 0, len(allActions))
	for _, action := range allActions {
		if t.Allows(action) {
			out = append(out, action)
		}
	}
	return out
}
