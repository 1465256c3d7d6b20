/*
Package machine validates a raw 7-tuple and turns it into an immutable Machine.

A Machine is the only form in which a definition reaches the executor: the
constructor checks every state and symbol referenced by the tuple and its
rules, and rejects nondeterministic tables. Once built, a Machine and its
Table are read-only and may be shared by concurrent runs without locking.

	m, err := machine.New(def)
	if err != nil {
		for _, violation := range domain.ValidationErrors(err) {
			log.Println(violation)
		}
		return err
	}
	rule, ok := m.Lookup("q0", "1")
*/
package machine
