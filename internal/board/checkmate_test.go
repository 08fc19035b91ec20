package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate - already checkmate
	// White: Ka1, Ra8
	// Black: Kh8, pawns on g7 and h7 blocking escape
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Checkmate position:")
	t.Log(pos)

	if !pos.InCheck() {
		t.Fatal("Expected black to be in check")
	}

	legal := pos.LegalContinuations()
	t.Log("Black legal moves:", legal.Count())
	if len(legal) != 0 {
		t.Errorf("Expected empty continuations, got %v", legal.PossibleMoves())
	}

	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.IsStalemate() {
		t.Error("Checkmate reported as stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// King CAN escape - not checkmate
	// Black king on h8, rook on g8 but king can take it
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Not checkmate position (king can capture rook):")
	t.Log(pos)

	if !pos.InCheck() {
		t.Error("Expected black to be in check")
	}
	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
	if !pos.LegalContinuations().Contains(Move{From: H8, To: G8}) {
		t.Error("Expected H8:G8 to be legal")
	}
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if pos.InCheck() {
		t.Error("Stalemated king reported in check")
	}
	if !pos.IsStalemate() {
		t.Error("Expected stalemate")
	}
	if pos.IsCheckmate() {
		t.Error("Stalemate reported as checkmate")
	}
}
