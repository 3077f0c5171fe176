// Command callnav-dial starts one outbound navigation run from the
// command line: the equivalent of the settings UI's "start a call"
// button, which this system does not otherwise expose.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ivrline/callnav/internal/platform/envutil"
	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/telephony"
)

func main() {
	destination := flag.String("to", "", "destination phone number, E.164 (required)")
	purpose := flag.String("purpose", "", "call purpose, passed through as a query override")
	flag.Parse()

	if *destination == "" {
		fmt.Fprintln(os.Stderr, "missing required -to flag")
		os.Exit(2)
	}

	log, err := logger.New(envutil.GetEnv("LOG_MODE", "development", nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	originator, err := telephony.NewHTTPOriginator(log)
	if err != nil {
		log.Fatal("init telephony originator", "error", err)
	}

	baseURL := envutil.GetEnv("CALL_BASE_URL", "http://localhost:8080", log)
	startURL := baseURL + "/voice/call-start"
	if *purpose != "" {
		startURL += "?call_purpose=" + *purpose
	}

	callID, err := originator.OriginateCall(context.Background(), *destination, startURL)
	if err != nil {
		log.Fatal("originate call failed", "error", err)
	}

	fmt.Println(callID)
}
