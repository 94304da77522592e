package tipping

// PollParams describes a new poll. Deadline zero means open until closed.
type PollParams struct {
	ID       uint64
	Title    string
	Options  []string
	Deadline uint64
}

func newPoll(profile [20]byte, params PollParams, now uint64) (*Poll, error) {
	title := NormalizeText(params.Title)
	if err := validateText(title, MaxPollTitleLength, ErrPollTitleTooLong, true); err != nil {
		return nil, err
	}
	if len(params.Options) < MinPollOptions {
		return nil, ErrTooFewPollOptions
	}
	if len(params.Options) > MaxPollOptions {
		return nil, ErrTooManyPollOptions
	}
	options := make([]PollOption, len(params.Options))
	for i, raw := range params.Options {
		label := NormalizeText(raw)
		if err := validateText(label, MaxPollOptionLength, ErrPollOptionTooLong, true); err != nil {
			return nil, err
		}
		options[i] = PollOption{Label: label}
	}
	if params.Deadline != 0 && params.Deadline <= now {
		return nil, ErrInvalidPollDeadline
	}
	return &Poll{
		Profile:   profile,
		ID:        params.ID,
		Title:     title,
		Options:   options,
		Deadline:  params.Deadline,
		Active:    true,
		CreatedAt: now,
	}, nil
}

// canVote reports why a vote for option at now would be refused.
func (p *Poll) canVote(option int, now uint64) error {
	if !p.Active {
		return ErrPollNotActive
	}
	if p.Deadline != 0 && now > p.Deadline {
		return ErrPollDeadlineExpired
	}
	if option < 0 || option >= len(p.Options) {
		return ErrInvalidPollOption
	}
	return nil
}

// Vote adds a tip-weighted vote.
func (p *Poll) Vote(option int, amount, now uint64) error {
	if err := p.canVote(option, now); err != nil {
		return err
	}
	votes, err := addUint64(p.Options[option].Votes, 1)
	if err != nil {
		return err
	}
	optionAmount, err := addUint64(p.Options[option].Amount, amount)
	if err != nil {
		return err
	}
	totalVotes, err := addUint64(p.TotalVotes, 1)
	if err != nil {
		return err
	}
	totalAmount, err := addUint64(p.TotalAmount, amount)
	if err != nil {
		return err
	}
	p.Options[option].Votes = votes
	p.Options[option].Amount = optionAmount
	p.TotalVotes = totalVotes
	p.TotalAmount = totalAmount
	return nil
}

// Winner returns the index of the option with the largest accumulated amount.
// Ties go to the earliest option.
func (p *Poll) Winner() int {
	if len(p.Options) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(p.Options); i++ {
		if p.Options[i].Amount > p.Options[best].Amount {
			best = i
		}
	}
	return best
}
