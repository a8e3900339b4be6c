package debugger

import (
	"flag"
	"os"
	"testing"

	"github.com/deet-dbg/deet/pkg/logflags"
	protest "github.com/deet-dbg/deet/pkg/proc/test"
)

func TestMain(m *testing.M) {
	var logConf string
	flag.StringVar(&logConf, "log", "", "configures logging")
	flag.Parse()
	logflags.Setup(logConf != "", logConf, "")
	os.Exit(protest.RunTestsWithFixtures(m))
}
