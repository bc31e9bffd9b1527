package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/dataaggregator"
)

type linesRouter struct {
	reconciler *dataaggregator.Reconciler
}

func LinesRouter(router fiber.Router, reconciler *dataaggregator.Reconciler) {
	l := linesRouter{reconciler: reconciler}

	router.Get("/", l.listLines)
	router.Get("/:line/departures", l.getLineDepartures)
	router.Get("/:line/departures/:direction", l.getDirectionDepartures)
}

func responseGroups(c *fiber.Ctx) []string {
	if c.Query("detail") == "full" {
		return []string{"basic", "detailed"}
	}
	return []string{"basic"}
}

func sendReduced(c *fiber.Ctx, data any) error {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: responseGroups(c),
	}, data)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce response",
		})
	}

	return c.JSON(reduced)
}

func (l *linesRouter) listLines(c *fiber.Ctx) error {
	return sendReduced(c, l.reconciler.Lines)
}

func (l *linesRouter) lookupLine(c *fiber.Ctx) (*ctdf.Line, error) {
	line := l.reconciler.GetLine(c.Params("line"))
	if line == nil {
		c.SendStatus(fiber.StatusNotFound)
		return nil, c.JSON(fiber.Map{
			"error": "Could not find Line matching Line Identifier",
		})
	}

	return line, nil
}

type lineDepartures struct {
	Line            *ctdf.Line             `groups:"basic"`
	Directions      []*ctdf.StopState      `groups:"basic"`
	TrafficMessages []*ctdf.TrafficMessage `groups:"basic"`
}

func (l *linesRouter) getLineDepartures(c *fiber.Ctx) error {
	line, err := l.lookupLine(c)
	if line == nil {
		return err
	}

	response := lineDepartures{
		Line:            line,
		Directions:      []*ctdf.StopState{},
		TrafficMessages: l.reconciler.Board.TrafficMessages(line.ID),
	}

	for _, direction := range line.Directions {
		if state, exists := l.reconciler.Board.Get(line.Key(direction.Key)); exists {
			response.Directions = append(response.Directions, state)
		}
	}

	return sendReduced(c, response)
}

func (l *linesRouter) getDirectionDepartures(c *fiber.Ctx) error {
	line, err := l.lookupLine(c)
	if line == nil {
		return err
	}

	direction := line.GetDirection(c.Params("direction"))
	if direction == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Direction on this Line",
		})
	}

	state, exists := l.reconciler.Board.Get(line.Key(direction.Key))
	if !exists {
		c.SendStatus(fiber.StatusServiceUnavailable)
		return c.JSON(fiber.Map{
			"error": "Departures for this Direction have not been reconciled yet",
		})
	}

	return sendReduced(c, state)
}
