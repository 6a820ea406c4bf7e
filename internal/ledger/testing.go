package ledger

// SeedBalance is a test helper that overwrites an account balance when using
// the in-memory ledger.
func SeedBalance(l Ledger, id string, amount int64) {
	mem, ok := l.(*memoryLedger)
	if !ok {
		if p, isPersistent := l.(*persistentLedger); isPersistent {
			mem = p.mem
		} else {
			return
		}
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.balances[id] = amount
}
