package tipping

// GoalParams describes a new fundraising goal. Deadline zero means open-ended.
type GoalParams struct {
	ID          uint64
	Title       string
	Description string
	Target      uint64
	Deadline    uint64
}

func newGoal(profile [20]byte, params GoalParams, now uint64) (*Goal, error) {
	title := NormalizeText(params.Title)
	if err := validateText(title, MaxGoalTitleLength, ErrGoalTitleTooLong, true); err != nil {
		return nil, err
	}
	description := NormalizeText(params.Description)
	if err := validateText(description, MaxGoalDescriptionLength, ErrGoalDescriptionTooLong, true); err != nil {
		return nil, err
	}
	if params.Target == 0 {
		return nil, ErrInvalidGoalAmount
	}
	if params.Deadline != 0 {
		if params.Deadline <= now {
			return nil, ErrInvalidGoalDeadline
		}
		if params.Deadline-now > MaxGoalDuration {
			return nil, ErrGoalDurationTooLong
		}
	}
	return &Goal{
		Profile:     profile,
		ID:          params.ID,
		Title:       title,
		Description: description,
		Target:      params.Target,
		Deadline:    params.Deadline,
		CreatedAt:   now,
	}, nil
}

// canContribute reports why a contribution at now would be refused.
func (g *Goal) canContribute(now uint64) error {
	if g.Closed {
		return ErrGoalClosed
	}
	if g.Completed {
		return ErrGoalAlreadyCompleted
	}
	if g.Deadline != 0 && now > g.Deadline {
		return ErrGoalDeadlineExpired
	}
	return nil
}

// AddContribution accumulates amount and completes the goal the moment the
// target is reached. Completion is recorded once.
func (g *Goal) AddContribution(amount uint64, isNewContributor bool, now uint64) error {
	if err := g.canContribute(now); err != nil {
		return err
	}
	current, err := addUint64(g.Current, amount)
	if err != nil {
		return err
	}
	unique := g.UniqueContributors
	if isNewContributor {
		if unique, err = addUint64(unique, 1); err != nil {
			return err
		}
	}
	g.Current = current
	g.UniqueContributors = unique
	if g.Current >= g.Target {
		g.Completed = true
		g.CompletedAt = now
	}
	return nil
}

// CompletionBps is progress in basis points, capped at 10000.
func (g *Goal) CompletionBps() uint64 {
	if g.Target == 0 || g.Current >= g.Target {
		return BpsDenominator
	}
	pct, err := mulDiv(g.Current, BpsDenominator, g.Target)
	if err != nil {
		return BpsDenominator
	}
	return pct
}
