package adapter

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"gridwarden/internal/domain"
)

// SSHCollector gathers hardware telemetry from a host over SSH using
// key-based authentication.
type SSHCollector struct {
	user     string
	keyPath  string
	port     int
	timeout  time.Duration
	commands []FactCommand
}

// SSHCollectorConfig holds configuration for the SSH collector
type SSHCollectorConfig struct {
	User    string
	KeyPath string
	// Port for SSH connections
	Port int
	// Timeout for connection and each command
	Timeout time.Duration
	// Commands to run for fact gathering
	Commands []FactCommand
}

// NewSSHCollector creates a new SSH-based telemetry collector
func NewSSHCollector(config SSHCollectorConfig) (*SSHCollector, error) {
	if config.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}
	if config.KeyPath == "" {
		return nil, fmt.Errorf("ssh key path is required")
	}
	if config.Port == 0 {
		config.Port = 22
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if len(config.Commands) == 0 {
		config.Commands = DefaultFactCommands
	}

	return &SSHCollector{
		user:     config.User,
		keyPath:  config.KeyPath,
		port:     config.Port,
		timeout:  config.Timeout,
		commands: config.Commands,
	}, nil
}

// Port returns the SSH port the collector connects to
func (c *SSHCollector) Port() int {
	return c.port
}

// Collect connects to a host and assembles telemetry from command output.
// A failing command leaves its section unreported; the engine then records
// the affected fields as missing instead of the probe aborting.
func (c *SSHCollector) Collect(ctx context.Context, host string) (*domain.TelemetrySpec, error) {
	client, err := c.connect(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer client.Close()

	tel := &domain.TelemetrySpec{}
	gathered := 0

	for _, cmd := range c.commands {
		output, err := c.runCommand(client, cmd.Command)
		if err != nil {
			log.Printf("SSH probe: command '%s' failed on %s: %v", cmd.Name, host, err)
			continue
		}

		if err := cmd.Apply(output, tel); err != nil {
			log.Printf("SSH probe: failed to parse '%s' output from %s: %v", cmd.Name, host, err)
			continue
		}
		gathered++
	}

	log.Printf("SSH probe: gathered %d/%d fact sets from %s", gathered, len(c.commands), host)
	return tel, nil
}

// connect establishes an SSH connection with key-based authentication
func (c *SSHCollector) connect(ctx context.Context, host string) (*ssh.Client, error) {
	config, err := c.buildSSHConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", host, c.port)
	dialer := &net.Dialer{
		Timeout: c.timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (c *SSHCollector) buildSSHConfig() (*ssh.ClientConfig, error) {
	keyData, err := os.ReadFile(c.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &ssh.ClientConfig{
		User: c.user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.timeout,
	}, nil
}

// runCommand executes a command over SSH and returns the output
func (c *SSHCollector) runCommand(client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	done := make(chan error, 1)
	var output []byte

	go func() {
		output, err = session.CombinedOutput(cmd)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			// Non-zero exit still yields usable output (nvidia-smi on a
			// GPU-less host exits 127)
			if _, ok := err.(*ssh.ExitError); ok {
				return string(output), nil
			}
			return "", fmt.Errorf("command failed: %w", err)
		}
		return string(output), nil
	case <-time.After(c.timeout):
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout")
	}
}
