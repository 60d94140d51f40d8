package tutorplugin

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const defaultStartTimeout = 3 * time.Second

// Open launches a collaborator binary and dispenses its client. The
// returned closer kills the guest process; callers defer it per call,
// matching the short-lived-guest model.
func Open(binary string) (CollaboratorClient, func(), error) {
	if binary == "" {
		return nil, nil, fmt.Errorf("collaborator binary is not configured")
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          PluginMap(nil),
		Cmd:              exec.Command(binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start collaborator %s: %w", binary, err)
	}
	raw, err := rpcClient.Dispense(PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense collaborator: %w", err)
	}
	typed, ok := raw.(CollaboratorClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("collaborator rpc client type mismatch")
	}
	return typed, closeFn, nil
}
