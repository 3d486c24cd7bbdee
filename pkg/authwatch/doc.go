// Package authwatch classifies system journal lines into SSH and sudo
// security events and decides which of them warrant an alert.
//
// Quick start:
//
//	w, err := authwatch.New(authwatch.WithWhitelist("alice", "bob"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ev, _ := w.Classify("sshd[1]: Accepted password for eve from 5.6.7.8 port 22 ssh2")
//	fmt.Println(ev.Kind, ev.AlertWorthy) // accepted_login true
//
// A Watcher is immutable and safe for concurrent use. Create once, reuse
// across goroutines.
package authwatch
