package shared

// ConfirmationPolicy specifies how executors should handle user confirmations.
type ConfirmationPolicy int

const (
	// ConfirmationPrompt indicates the executor should prompt the user.
	ConfirmationPrompt ConfirmationPolicy = iota
	// ConfirmationAssumeYes indicates the executor should continue without prompting.
	ConfirmationAssumeYes
)

// ConfirmationPolicyFromBool converts the --yes flag into a policy.
func ConfirmationPolicyFromBool(assumeYes bool) ConfirmationPolicy {
	if assumeYes {
		return ConfirmationAssumeYes
	}
	return ConfirmationPrompt
}

// ShouldPrompt reports whether the executor must prompt the user.
func (policy ConfirmationPolicy) ShouldPrompt() bool {
	return policy != ConfirmationAssumeYes
}

// Confirmation tracks confirmation state across one serialized batch. Once the
// user answers "all", later items are confirmed without prompting.
type Confirmation struct {
	policy     ConfirmationPolicy
	prompter   ConfirmationPrompter
	applyToAll bool
}

// NewConfirmation binds a policy to a prompter. A nil prompter confirms everything.
func NewConfirmation(policy ConfirmationPolicy, prompter ConfirmationPrompter) *Confirmation {
	return &Confirmation{policy: policy, prompter: prompter}
}

// Confirm asks for approval of one item.
func (confirmation *Confirmation) Confirm(prompt string) (bool, error) {
	if !confirmation.policy.ShouldPrompt() || confirmation.applyToAll || confirmation.prompter == nil {
		return true, nil
	}
	result, promptError := confirmation.prompter.Confirm(prompt)
	if promptError != nil {
		return false, promptError
	}
	if result.ApplyToAll {
		confirmation.applyToAll = true
		return true, nil
	}
	return result.Confirmed, nil
}
