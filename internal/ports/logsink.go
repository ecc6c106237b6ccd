package ports

// LogSinkPort receives operation log lines. Appends are best effort and
// never fail the caller.
type LogSinkPort interface {
	Append(line string)
}
