/*
Package resilience provides a circuit breaker for calls to dependencies that
can fail for a while, such as the progress database.

A breaker starts closed. When Trip reports too many failures it opens and
rejects calls with ErrOpen until Cooldown passes, then lets MaxProbes calls
through half-open. Enough successful probes close it again; a failed probe
reopens it.

	breaker := resilience.New("progress-db", resilience.Settings{
		Cooldown: 30 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	err := breaker.Do(ctx, func(ctx context.Context) error {
		_, err := store.RecordAttempt(ctx, attempt)
		return err
	})

OnStateChange runs with the breaker locked and must not call back into it.
*/
package resilience
