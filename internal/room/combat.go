package room

// processCombatAndProjectiles is ProcessCombatAndProjectiles: the fixed
// stage order that turns player fire intent, in-flight projectiles, and
// enemy melee range checks into damage, deaths, drops, and (possibly)
// the end of the match. Grounded on
// original_source/server/src/game/managers/game_manager_combat.cpp.
func (s *Scene) processCombatAndProjectiles(dt float64) {
	params := s.buildCombatParams(dt)
	s.processPlayerFireStage(dt, params)
	killed := s.processProjectileHitStage(dt, params)
	s.processEnemyDropStage(killed)
	s.processEnemyMeleeStage()
	s.updateGameOverForCombat()
}
