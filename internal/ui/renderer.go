// Package ui draws positions and analyses on a color terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.Attribute
	DarkSquare     color.Attribute
	SelectedSquare color.Attribute
	LegalMoveColor color.Attribute
	LastMoveColor  color.Attribute
	CheckColor     color.Attribute
	WhitePiece     color.Attribute
	BlackPiece     color.Attribute
	TextColor      *color.Color
	Highlight      *color.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.BgHiWhite,
		DarkSquare:     color.BgWhite,
		SelectedSquare: color.BgHiYellow,
		LegalMoveColor: color.BgHiGreen,
		LastMoveColor:  color.BgYellow,
		CheckColor:     color.BgHiRed,
		WhitePiece:     color.FgBlue,
		BlackPiece:     color.FgBlack,
		TextColor:      color.New(color.FgHiBlack),
		Highlight:      color.New(color.FgGreen, color.Bold),
	}
}

// Highlights marks squares of interest on a drawn board.
type Highlights struct {
	Selected   board.Square   // NoSquare for none
	LegalMoves board.Bitboard // Destinations of the selected piece
	LastMove   board.Move     // NoMove for none
}

// NoHighlights draws a plain board.
var NoHighlights = Highlights{Selected: board.NoSquare, LastMove: board.NoMove}

// Renderer handles all drawing operations.
type Renderer struct {
	theme   *Theme
	unicode bool
}

// NewRenderer creates a new renderer. With unicode set pieces are drawn
// as chess glyphs instead of letters.
func NewRenderer(unicode bool) *Renderer {
	return &Renderer{theme: DefaultTheme(), unicode: unicode}
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

var glyphs = [2][6]string{
	{"♙", "♘", "♗", "♖", "♕", "♔"},
	{"♟", "♞", "♝", "♜", "♛", "♚"},
}

func (r *Renderer) pieceText(p board.Piece) string {
	if p == board.NoPiece {
		return " "
	}
	if r.unicode {
		return glyphs[p.Color()][p.Type()]
	}
	return p.String()
}

// squareColor picks the background of sq: check, then selection, then
// legal destinations, then the last move, then the plain square color.
func (r *Renderer) squareColor(pos board.Position, sq board.Square, h Highlights) color.Attribute {
	stm := pos.SideToMove
	switch {
	case sq == pos.KingSquare(stm) && pos.InCheck():
		return r.theme.CheckColor
	case sq == h.Selected:
		return r.theme.SelectedSquare
	case h.LegalMoves.IsSet(sq):
		return r.theme.LegalMoveColor
	case h.LastMove != board.NoMove && (sq == h.LastMove.From || sq == h.LastMove.To):
		return r.theme.LastMoveColor
	case (sq.Rank()+sq.File())%2 == 0:
		return r.theme.DarkSquare
	default:
		return r.theme.LightSquare
	}
}

// DrawBoard writes pos to w with White at the bottom.
func (r *Renderer) DrawBoard(w io.Writer, pos board.Position, h Highlights) {
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprint(w, r.theme.TextColor.Sprintf("%d ", rank+1))
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			piece := pos.PieceAt(sq)

			cell := color.New(r.squareColor(pos, sq, h))
			if piece != board.NoPiece {
				fg := r.theme.WhitePiece
				if piece.Color() == board.Black {
					fg = r.theme.BlackPiece
				}
				cell.Add(fg, color.Bold)
			}
			fmt.Fprint(w, cell.Sprintf(" %s ", r.pieceText(piece)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, r.theme.TextColor.Sprint("   A  B  C  D  E  F  G  H"))
	fmt.Fprintf(w, "%s to move, castling %s, en passant %s\n",
		pos.SideToMove, pos.CastlingRights, pos.EnPassant)
}

// DrawPossibleMoves writes the legal continuations of pos grouped by origin.
func (r *Renderer) DrawPossibleMoves(w io.Writer, pos board.Position) {
	legal := pos.LegalContinuations()
	fmt.Fprintf(w, "%s legal moves:\n", engine.FormatCount(legal.Count()))
	for _, from := range legal.Origins() {
		var dests []string
		legal.Destinations(from).ForEach(func(to board.Square) {
			dests = append(dests, to.String())
		})
		fmt.Fprintf(w, "  %s %s -> %s\n", r.pieceText(pos.PieceAt(from)),
			r.theme.Highlight.Sprint(from), strings.Join(dests, " "))
	}
}

// DrawRanking writes ranked moves with their SAN, score and node counts.
func (r *Renderer) DrawRanking(w io.Writer, pos board.Position, ranked []engine.ScoredMove) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No legal moves.")
		return
	}
	for i, sm := range ranked {
		line := fmt.Sprintf("%2d. %-8s %-6s %7s  %s nodes", i+1, pos.SAN(sm.Move), sm.Move.UCI(),
			engine.ScoreString(sm.Score), engine.FormatCount(sm.Nodes))
		if i == 0 {
			line = r.theme.Highlight.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
}
