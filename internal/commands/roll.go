package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/pkg/cmd"
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

var (
	errEmptyFormula = errors.New("can't parse your formula. Try something like `2d6+1d4*2-3`")
	errDanglingOp   = errors.New("can't multiply or divide by nothing")
	errDivByZero    = errors.New("can't divide by zero")
)

type term struct {
	value int
	desc  string
	op    string
}

// rollResult is an evaluated formula.
type rollResult struct {
	Formula string
	Pretty  string
	Total   int
}

func newRoll() cmd.Command {
	return cmd.New("roll", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		formula, _ := inv.Value(0).(string)

		res, err := evaluate(formula, rand.Intn)
		if err != nil {
			_, err = c.Reply(ctx, "⚠️ "+err.Error())
			return err
		}
		_, err = c.SendEmbed(ctx, &discordgo.MessageEmbed{
			Title:       "🎲 Dice Roll",
			Description: fmt.Sprintf("**User Input**:\t`%s`\n**Calculation**:\t%s\n**Result**:\t**%d**", res.Formula, res.Pretty, res.Total),
			Color:       EmbedColor,
		})
		return err
	},
		cmd.WithDescription("Roll dice like `2d20+1d6-2`"),
		cmd.WithHelp(`Roll dice like `+"`2d20+1d6-2`"+`.

Multiplication and division bind tighter than addition.

Args:
    formula: Supports `+"`2d6+1d4*2-3`"+` and similar math`),
		cmd.WithParams(cmd.Arg("formula", cmd.Text)),
	)
}

// evaluate parses and rolls formula. intn must behave like rand.Intn.
func evaluate(formula string, intn func(int) int) (*rollResult, error) {
	formula = strings.ReplaceAll(formula, " ", "")
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return nil, errEmptyFormula
	}

	var terms []term
	currentOp := "+"
	for _, token := range tokens {
		if validOps[token] {
			currentOp = token
			continue
		}
		val, desc, err := evaluateToken(token, intn)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate `%s`: %w", token, err)
		}
		terms = append(terms, term{value: val, desc: desc, op: currentOp})
	}
	if len(terms) == 0 {
		return nil, errEmptyFormula
	}

	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		if len(merged) == 0 {
			return nil, errDanglingOp
		}
		prev := merged[len(merged)-1]
		merged = merged[:len(merged)-1]

		var v int
		if t.op == "*" {
			v = prev.value * t.value
		} else {
			if t.value == 0 {
				return nil, errDivByZero
			}
			v = prev.value / t.value
		}
		merged = append(merged, term{
			value: v,
			desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
			op:    prev.op,
		})
	}

	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", t.op))
		}
		details = append(details, t.desc)
		if t.op == "-" {
			total -= t.value
		} else {
			total += t.value
		}
	}
	return &rollResult{Formula: formula, Pretty: strings.Join(details, ""), Total: total}, nil
}

func evaluateToken(token string, intn func(int) int) (int, string, error) {
	if m := diceRegex.FindStringSubmatch(token); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, "", errors.New("invalid dice count")
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return 0, "", errors.New("invalid dice sides")
		}
		if count > 100 || sides > 1000 {
			return 0, "", errors.New("too big. max 100 dice, 1000 sides")
		}

		var sum int
		rolls := make([]string, 0, count)
		for i := 0; i < count; i++ {
			r := intn(sides) + 1
			sum += r
			rolls = append(rolls, strconv.Itoa(r))
		}
		return sum, fmt.Sprintf("`%s` [%s]", token, strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", errors.New("not a number or dice")
	}
	return num, fmt.Sprintf("`%d`", num), nil
}
