package parset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ClusterMode selects how compute nodes are found.
type ClusterMode int

const (
	// ClusterSingle runs everything on the local host.
	ClusterSingle ClusterMode = iota
	// ClusterPBS uses the nodes reserved by the PBS batch system.
	ClusterPBS
	// ClusterDescriptor reads nodes from a cluster description file.
	ClusterDescriptor
)

func (m ClusterMode) String() string {
	switch m {
	case ClusterPBS:
		return "pbs"
	case ClusterDescriptor:
		return "clusterdesc"
	default:
		return "single"
	}
}

// MarshalText renders the mode name for JSON and TOML output.
func (m ClusterMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// PBSNodeFileEnv names the variable PBS sets to the reserved node list.
const PBSNodeFileEnv = "PBS_NODEFILE"

// Nodes returns the compute node host names for the configured mode.
func (c Cluster) Nodes() ([]string, error) {
	switch c.Mode {
	case ClusterPBS:
		path := strings.TrimSpace(os.Getenv(PBSNodeFileEnv))
		if path == "" {
			return nil, fmt.Errorf("cluster mode pbs: %s is not set", PBSNodeFileEnv)
		}
		nodes, err := readNodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("cluster mode pbs: %w", err)
		}
		return nodes, nil
	case ClusterDescriptor:
		nodes, err := readClusterDesc(c.ClusterDescFile)
		if err != nil {
			return nil, fmt.Errorf("cluster mode clusterdesc: %w", err)
		}
		return nodes, nil
	default:
		host, err := os.Hostname()
		if err != nil || strings.TrimSpace(host) == "" {
			host = "localhost"
		}
		return []string{host}, nil
	}
}

// readNodeFile reads a PBS node file: one host per line, repeated once per
// reserved slot. Duplicates are collapsed preserving first-seen order.
func readNodeFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open node file: %w", err)
	}
	defer file.Close()

	var nodes []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		host := strings.TrimSpace(scanner.Text())
		if host == "" {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		nodes = append(nodes, host)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read node file: %w", err)
	}
	if len(nodes) == 0 {
		return nil, errors.New("node file lists no hosts")
	}
	return nodes, nil
}

// readClusterDesc collects the Compute.Nodes lists of a cluster description
// file ("Compute.Nodes = [node01, node02]", optionally prefixed by a
// sub-cluster name).
func readClusterDesc(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cluster description: %w", err)
	}
	defer file.Close()

	var nodes []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isComment(line) {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key != "Compute.Nodes" && !strings.HasSuffix(key, ".Compute.Nodes") {
			continue
		}
		for _, host := range ParseList(value) {
			if _, dup := seen[host]; dup {
				continue
			}
			seen[host] = struct{}{}
			nodes = append(nodes, host)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cluster description: %w", err)
	}
	if len(nodes) == 0 {
		return nil, errors.New("cluster description lists no compute nodes")
	}
	return nodes, nil
}
