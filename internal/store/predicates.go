package store

// AccountPredicate is a side-effect-free selection filter over accounts.
// The scheduler loop composes these; entities never hide query logic.
type AccountPredicate func(*Account) bool

// Alive excludes soft-deleted accounts.
func Alive(a *Account) bool {
	return a.Status.Alive()
}

// InClass matches accounts whose status falls into the given activity class.
func InClass(class ActivityClass) AccountPredicate {
	return func(a *Account) bool {
		return a.Status.Class() == class
	}
}

// HasSchedule matches accounts assigned to a schedule.
func HasSchedule(a *Account) bool {
	return a.ScheduleID != nil
}

// WithoutSchedule matches accounts not yet assigned to a schedule.
func WithoutSchedule(a *Account) bool {
	return a.ScheduleID == nil
}

// ProxyHealthy matches accounts whose proxy flag is up.
func ProxyHealthy(a *Account) bool {
	return a.ProxyActive
}

// Gold matches paid-tier accounts.
func Gold(a *Account) bool {
	return a.Gold
}

// WarmingUp matches accounts still in their warm-up window.
func WarmingUp(a *Account) bool {
	return a.WarmUp
}

// And combines predicates; all must match.
func And(preds ...AccountPredicate) AccountPredicate {
	return func(a *Account) bool {
		for _, p := range preds {
			if !p(a) {
				return false
			}
		}
		return true
	}
}

// Not inverts a predicate.
func Not(p AccountPredicate) AccountPredicate {
	return func(a *Account) bool {
		return !p(a)
	}
}

// FilterAccounts returns the accounts matching the predicate.
func FilterAccounts(accounts []Account, pred AccountPredicate) []Account {
	var out []Account
	for i := range accounts {
		if pred(&accounts[i]) {
			out = append(out, accounts[i])
		}
	}
	return out
}
