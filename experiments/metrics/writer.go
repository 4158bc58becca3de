package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Writer struct {
	baseDir string
}

// NewWriter creates root/name/<timestamp> to hold the experiment's files.
func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "iterations", "duration", "depth", "leaf_depth", "max_candidates", "temperature"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Iterations),
			config.Duration.String(),
			strconv.Itoa(config.Depth),
			strconv.Itoa(config.LeafDepth),
			strconv.Itoa(config.MaxCandidates),
			strconv.FormatFloat(config.Temperature, 'g', -1, 64),
		}
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "white", "black", "winner", "reason", "turns", "start_time", "end_time", "duration"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			record.ID.String(),
			strconv.Itoa(record.White),
			strconv.Itoa(record.Black),
			record.Winner,
			record.Reason,
			strconv.Itoa(record.Turns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteDecisionRecords(records []DecisionRecord) error {
	header := []string{"game", "turn", "color", "phase", "action", "belief_size", "candidates", "nodes", "infosets", "iterations", "duration", "value"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			record.Game.String(),
			strconv.Itoa(record.Turn),
			record.Color,
			record.Phase.String(),
			record.Action,
			strconv.Itoa(record.BeliefSize),
			strconv.Itoa(record.Candidates),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Infosets),
			strconv.Itoa(record.Iterations),
			record.Duration.String(),
			strconv.FormatFloat(record.Value, 'f', 2, 64),
		}
	}
	return w.write("decision_records.csv", header, rows)
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}

	// Write each row
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}

	return nil
}
