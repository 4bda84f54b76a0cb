/*
Package action declares moves and resolves player input against them.

An Action is an ordered list of Selections plus an effect. Each Selection is one
argument slot whose legal values are computed fresh from the live game state
(and the arguments already accepted) on every resolution attempt.

# Resolution

  - Resolve walks the selections in order and stops at the first missing or
    rejected argument, returning the next ResolvedSelection and the accepted prefix.
  - ForceArgs resolves with no input, collapsing every selection that has exactly
    one legal value.
  - IsPossible reports whether the action has any legal completion start.
*/
package action
