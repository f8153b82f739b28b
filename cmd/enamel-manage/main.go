// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package enamel-manage manages the enamel PostgreSQL schema.
package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/diffeo/go-enamel/config"
	"github.com/diffeo/go-enamel/postgres"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var db *sql.DB

var upgrade = cli.Command{
	Name:  "upgrade",
	Usage: "apply pending schema migrations",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "limit",
			Usage: "apply at most this many migrations (0 for all)",
		},
	},
	Action: func(c *cli.Context) error {
		n, err := postgres.UpgradeMax(db, c.Int("limit"))
		if err != nil {
			return err
		}
		logrus.WithField("applied", n).Info("Upgraded database")
		return nil
	},
}

var downgrade = cli.Command{
	Name:  "downgrade",
	Usage: "revert applied schema migrations",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "limit",
			Value: 1,
			Usage: "revert at most this many migrations (0 for all)",
		},
	},
	Action: func(c *cli.Context) error {
		n, err := postgres.DowngradeMax(db, c.Int("limit"))
		if err != nil {
			return err
		}
		logrus.WithField("reverted", n).Info("Downgraded database")
		return nil
	},
}

var version = cli.Command{
	Name:  "version",
	Usage: "print the current schema version",
	Action: func(c *cli.Context) error {
		v, err := postgres.Version(db)
		if err != nil {
			return err
		}
		if v == "" {
			v = "(none)"
		}
		fmt.Fprintln(c.App.Writer, v)
		return nil
	},
}

var migrations = cli.Command{
	Name:  "migrations",
	Usage: "list every known schema migration",
	Action: func(c *cli.Context) error {
		for _, id := range postgres.Migrations() {
			fmt.Fprintln(c.App.Writer, id)
		}
		return nil
	},
}

// connection finds the database connection string from the command
// line, the environment, or the configuration file, in that order.
func connection(c *cli.Context) (string, error) {
	if conn := c.GlobalString("database"); conn != "" {
		return conn, nil
	}
	if file := c.GlobalString("config"); file != "" {
		cfg, err := config.Load(file)
		if err != nil {
			return "", err
		}
		if cfg.Database.Connection != "" {
			return cfg.Database.Connection, nil
		}
	}
	return "", errors.New("no database connection (use --database or --config)")
}

// needsDatabase says whether the command line names a command that
// talks to the database.  Help and the migration list do not.
func needsDatabase(args cli.Args) bool {
	switch args.First() {
	case "", "help", "h", migrations.Name:
		return false
	}
	return true
}

func main() {
	app := cli.NewApp()
	app.Name = "enamel-manage"
	app.Usage = "manage the enamel database"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "database",
			EnvVar: "ENAMEL_DATABASE",
			Usage:  "PostgreSQL connection string",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file with database.connection",
		},
	}
	app.Commands = []cli.Command{
		upgrade,
		downgrade,
		version,
		migrations,
	}
	app.Before = func(c *cli.Context) error {
		if !needsDatabase(c.Args()) {
			return nil
		}
		conn, err := connection(c)
		if err != nil {
			return err
		}
		db, err = postgres.Open(conn)
		return err
	}
	app.After = func(c *cli.Context) error {
		if db != nil {
			return db.Close()
		}
		return nil
	}
	app.RunAndExitOnError()
}
