// Package neat provides a Go implementation of speciated NeuroEvolution of Augmenting Topologies (NEAT).
//
// NEAT evolves both the weights and the wiring of neural networks with a genetic algorithm.
// Every structural mutation is tagged with a historical marker handed out by an
// InnovationTracker, which is what makes crossover between genomes of different shapes
// meaningful. Similar genomes are grouped into species that share fitness, so new
// structures get time to mature before competing with the whole population.
//
// Genomes lay their nodes out in fixed contiguous blocks:
//
//	[inputs | outputs | biases | hidden]
//
// Hidden nodes only ever appear through mutation.
//
// Basic usage:
//
//	// Load configuration
//	cfg, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	tracker := neat.NewInnovationTracker()
//	generator, err := neat.NewIndividualBuilder().
//		WithInnovationTracker(tracker).
//		WithNetworkShape(cfg.Network).
//		WithMutationRates(cfg.Mutation).
//		Generator()
//	if err != nil {
//		log.Fatalf("Error creating generator: %v", err)
//	}
//
//	pop, err := neat.NewPopulationBuilder().
//		WithConfig(cfg).
//		WithInnovationTracker(tracker).
//		WithGenerator(generator).
//		WithSelector(neat.NewCrossoverSelector(cfg.Speciation.CrossoverProbability, cfg.Population.Elites)).
//		Build()
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations with your fitness function
//	for i := 0; i < 100; i++ {
//		best, err := pop.RunGeneration(ctx, evaluate)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		fmt.Println("best fitness:", best.Fitness)
//	}
package neat
