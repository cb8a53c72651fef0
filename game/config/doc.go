// Package config provides configuration management for Connect-N games.
//
// Game configurations are JSON files in a configs directory. Each one
// defines the board size, the run length needed to win, which win rules
// are active and the messages shown to players:
//
//	{
//	  "name": "classic",
//	  "description": "Seven columns, six rows, four in a row",
//	  "columns": 7,
//	  "rows": 6,
//	  "win_condition": 4,
//	  "rules": ["vertical", "horizontal", "diagonal"],
//	  "first_player": "A",
//	  "messages": {"welcome": "...", "victory": "Player %s wins with a %s run!"}
//	}
//
// The Manager caches parsed configurations, lists the directory and falls
// back to a built-in seven by six board when no file is usable.
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg, err := manager.LoadConfig("tiny")
//
// Server-level settings (ports, storage backends, brokers) come from the
// environment through LoadServerSettings.
package config
