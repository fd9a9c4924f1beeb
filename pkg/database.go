package tracehist

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type ChannelPlaneEntry struct {
	Channel int `db:"Channel"`
	Plane   int `db:"Plane"`
}

// LoadChannelPlanes reads the channel to plane map valid for runNumber.
func LoadChannelPlanes(db *sqlx.DB, runNumber int, verbosity int, logger Logger) (*MapResolver, error) {
	query := "SELECT Channel, Plane FROM ChannelPlanes WHERE MinRun <= ? and MaxRun >= ? ORDER BY Channel"

	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading channel planes for run %d from database", runNumber), "database")
	}
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	resolver := &MapResolver{ToPlane: make(map[int]int)}
	var nplanes [NumPlanes]int
	for rows.Next() {
		result := ChannelPlaneEntry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		resolver.ToPlane[result.Channel] = result.Plane
		if result.Plane >= 0 && result.Plane < NumPlanes {
			nplanes[result.Plane]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	if len(resolver.ToPlane) == 0 {
		return nil, fmt.Errorf("no channel planes for run %d", runNumber)
	}

	if verbosity > 0 {
		message := fmt.Sprintf("Channels per plane: u=%d v=%d w=%d", nplanes[0], nplanes[1], nplanes[2])
		logger.Info(message, "database")
	}
	return resolver, nil
}
