// Command play is a terminal front end for Connect-N.
//
//	play local [--config classic]      two players share the keyboard
//	play remote new [--config tiny]    create a session on a running server
//	play remote drop 3 [4 2 ...]       one drop, or a bulk drop for several columns
//	play remote show                   print the board of the current session
//
// The remote commands remember the last created session in a .session file.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/connect-n/game/config"
	"github.com/wricardo/connect-n/game/engine"
)

const sessionFile = ".session"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := newApp(os.Stdin, os.Stdout, logger).Run(context.Background(), os.Args); err != nil {
		logger.Fatal().Err(err).Msg("play failed")
	}
}

func newApp(in io.Reader, out io.Writer, logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play Connect-N in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "local",
				Usage: "play a hot-seat game against the engine directly",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					eng, err := newLocalEngine(cmd.String("config-dir"), cmd.String("config"), logger)
					if err != nil {
						return err
					}
					return playLocal(eng, in, out)
				},
			},
			{
				Name:  "remote",
				Usage: "drive a running server over its REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "url",
						Value:   "http://localhost:8080",
						Usage:   "game server URL",
						Sources: cli.EnvVars("CONNECTN_URL"),
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "session ID (defaults to the one saved in " + sessionFile + ")",
					},
				},
				Commands: []*cli.Command{
					{
						Name:  "new",
						Usage: "create a session",
						Flags: []cli.Flag{configFlag()},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							client := NewClient(cmd.String("url"))
							session, err := client.CreateSession(cmd.String("config"))
							if err != nil {
								return err
							}
							if err := os.WriteFile(sessionFile, []byte(session.ID), 0644); err != nil {
								logger.Warn().Err(err).Msg("failed to save session id")
							}
							fmt.Fprintf(out, "Session %s (%s)\n", session.ID, session.ConfigName)
							printState(out, session.GameState)
							return nil
						},
					},
					{
						Name:      "drop",
						Usage:     "drop into one or more columns",
						ArgsUsage: "COLUMN [COLUMN...]",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							columns, err := parseColumns(cmd.Args().Slice())
							if err != nil {
								return err
							}
							client, err := remoteClient(cmd)
							if err != nil {
								return err
							}
							return remoteDrop(client, columns, out)
						},
					},
					{
						Name:  "show",
						Usage: "print the current board",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							client, err := remoteClient(cmd)
							if err != nil {
								return err
							}
							state, err := client.GetState()
							if err != nil {
								return err
							}
							printState(out, state)
							return nil
						},
					},
				},
			},
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "configuration name (see configs/)",
	}
}

// newLocalEngine resolves a configuration by name, falling back to the
// built-in classic board when the directory cannot be used
func newLocalEngine(dir, name string, logger zerolog.Logger) (*engine.GameEngine, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("using built-in classic config")
		return engine.NewEngineWithDefaults()
	}
	if name == "" {
		return engine.NewEngine(manager.GetDefault())
	}
	gameConfig, err := manager.LoadConfig(name)
	if err != nil {
		logger.Warn().Err(err).Str("config", name).Msg("using default config")
		gameConfig = manager.GetDefault()
	}
	return engine.NewEngine(gameConfig)
}

func remoteClient(cmd *cli.Command) (*Client, error) {
	client := NewClient(cmd.String("url"))
	client.sessionID = cmd.String("session")
	if client.sessionID == "" {
		data, err := os.ReadFile(sessionFile)
		if err != nil {
			return nil, fmt.Errorf("no session: run 'play remote new' or pass --session")
		}
		client.sessionID = strings.TrimSpace(string(data))
	}
	return client, nil
}

func parseColumns(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}
	columns := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part == "" {
				continue
			}
			column, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid column %q", part)
			}
			columns = append(columns, column)
		}
	}
	return columns, nil
}

func remoteDrop(client *Client, columns []int, out io.Writer) error {
	if len(columns) == 1 {
		result, err := client.Drop(columns[0])
		if errors.Is(err, errRejected) {
			fmt.Fprintf(out, "Rejected: %s\n", result.Message)
			printState(out, result.GameState)
			return nil
		}
		if err != nil {
			return err
		}
		printState(out, result.GameState)
		return nil
	}

	result, err := client.BulkDrop(columns)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Executed %d/%d drops\n", result.DropsExecuted, result.RequestedDrops)
	if result.StoppedReason != "" {
		fmt.Fprintf(out, "Stopped on drop %d: %s\n", result.StoppedOnDrop, result.StoppedReason)
	}
	printState(out, result.GameState)
	return nil
}

// playLocal runs a hot-seat game, one column per input line
func playLocal(eng *engine.GameEngine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		state := eng.GetState()
		printState(out, state)

		if state.GameOver {
			return nil
		}
		if len(eng.GetPossibleMoves()) == 0 {
			fmt.Fprintln(out, "The board is full. Nobody wins.")
			return nil
		}

		fmt.Fprintf(out, "Player %s, column (q to quit): ", eng.CurrentPlayer())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		column, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(out, "Not a column: %q\n", line)
			continue
		}
		if _, err := eng.Drop(column); err != nil {
			fmt.Fprintf(out, "Rejected: %v\n", err)
		}
	}
}

func printState(out io.Writer, state *engine.GameState) {
	if state == nil {
		return
	}
	b, err := engine.BoardFromColumns(state.ColumnCount, state.RowCapacity, state.Columns)
	if err == nil {
		fmt.Fprint(out, engine.RenderBoard(b))
	}
	if state.Message != "" {
		fmt.Fprintln(out, state.Message)
	}
}
