package signal_handle

import (
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/ryogrid/SamehadaBitmapScan/samehada"
)

// IsStopped is set once shutdown has begun. Handlers refuse new requests after that.
var IsStopped atomic.Bool

// SignalHandlerTh waits for SIGINT or SIGTERM, drains the request manager,
// shuts the db down and reports on exitNotifyCh
func SignalHandlerTh(db *samehada.SamehadaDB, reqManager *samehada.RequestManager, exitNotifyCh chan<- bool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("received %v, shutting down", sig)

	IsStopped.Store(true)
	reqManager.StopTh()
	db.Shutdown()

	exitNotifyCh <- true
}
