package tipping

// Deposit credits the vault unconditionally.
func (v *Vault) Deposit(amount uint64) error {
	balance, err := addUint64(v.Balance, amount)
	if err != nil {
		return err
	}
	deposited, err := addUint64(v.TotalDeposited, amount)
	if err != nil {
		return err
	}
	v.Balance = balance
	v.TotalDeposited = deposited
	return nil
}

// Withdraw debits amount while keeping the balance at or above MinReserve.
func (v *Vault) Withdraw(amount uint64) error {
	if amount > v.Balance {
		return ErrInsufficientBalance
	}
	remaining := v.Balance - amount
	if remaining < MinReserve {
		return ErrVaultBelowRentBuffer
	}
	withdrawn, err := addUint64(v.TotalWithdrawn, amount)
	if err != nil {
		return err
	}
	v.Balance = remaining
	v.TotalWithdrawn = withdrawn
	return nil
}

// Withdrawable is the balance above the reserve floor.
func (v *Vault) Withdrawable() uint64 {
	return saturatingSub(v.Balance, MinReserve)
}
