/*
Package flow defines a game's control flow as a tree of nodes and walks it one
player input at a time.

The tree is built once from nested constructors (Sequence, IfElse, SwitchCase,
WhileLoop, ForLoop, ForEach, EachPlayer, PlayerAction, Step) and frozen by Build,
which assigns every node a stable ID. The Interpreter walks the tree until it
reaches a PlayerAction leaf and then stops; where it stopped is captured as a
domain.Position, a path of frames from the root to that leaf.

Nothing is kept between calls. A host restores the position from a stored
GameState, processes one move and stores the new position:

	it := flow.New(tree, actions)
	if err := it.Restore(state.Position, state.Finished); err != nil {
		return err
	}
	res, err := it.ProcessMove(ctx, env, move)

Steps and action effects may return rules.Repeat or rules.Skip; the signal
travels up the walk to the nearest enclosing loop.
*/
package flow
