package encounter

import "slices"

func (m *Machine) entry(t LogType, message string, round int, combatantID string, amount *int) LogEntry {
	return LogEntry{
		ID:          m.newID(),
		Type:        t,
		Message:     message,
		Timestamp:   m.now(),
		Round:       round,
		CombatantID: combatantID,
		Amount:      amount,
	}
}

// appendLog adds entries and evicts the oldest beyond MaxLogEntries.
func (m *Machine) appendLog(log []LogEntry, entries ...LogEntry) []LogEntry {
	log = append(log, entries...)
	if over := len(log) - MaxLogEntries; over > 0 {
		log = slices.Clone(log[over:])
	}
	return log
}
